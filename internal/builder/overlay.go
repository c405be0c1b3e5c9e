package builder

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gate"
)

// excerptLen bounds how much of the rejected artifact is shown inline.
const excerptLen = 2000

var overlayPolicy = bluemonday.StrictPolicy()

// overlayBundle renders the rejection page served instead of a failed
// artifact. Gate errors and the artifact excerpt pass through a strict
// sanitizer: both can contain generator-authored markup and must never
// execute in the viewer's browser.
func overlayBundle(buildID string, report gate.Report, rejected artifact.Bundle) artifact.Bundle {
	var items strings.Builder
	for _, e := range report.Errors() {
		fmt.Fprintf(&items, "      <li class=\"err\">%s</li>\n", overlayPolicy.Sanitize(e))
	}
	for _, w := range report.Warnings() {
		fmt.Fprintf(&items, "      <li class=\"warn\">%s</li>\n", overlayPolicy.Sanitize(w))
	}

	excerpt := rejected.HTML()
	if excerpt == "" && len(rejected) > 0 {
		for _, name := range rejected.Names() {
			excerpt = rejected[name]
			break
		}
	}
	if len(excerpt) > excerptLen {
		excerpt = excerpt[:excerptLen] + "\n..."
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Build rejected</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; background: #1a1a2e; color: #eee; }
    main { max-width: 720px; margin: 4rem auto; padding: 0 1rem; }
    h1 { color: #e94560; }
    ul { padding-left: 1.2rem; }
    li.err { color: #e94560; }
    li.warn { color: #f0a500; }
    pre { background: #16213e; padding: 1rem; border-radius: 8px; overflow-x: auto; white-space: pre-wrap; }
    .meta { color: #888; font-size: 0.85rem; }
  </style>
</head>
<body data-generation-failed="true">
  <main>
    <h1>Build rejected</h1>
    <p>The generated page did not pass validation and was not published.</p>
    <ul>
%s    </ul>
    <h2>Rejected output (excerpt)</h2>
    <pre>%s</pre>
    <p class="meta">build %s &middot; type %s</p>
  </main>
</body>
</html>
`, items.String(), html.EscapeString(excerpt), html.EscapeString(buildID), html.EscapeString(report.ArtifactType))

	return artifact.Bundle{"index.html": page}
}
