package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
)

const goodPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Snake Game</title>
<style>
body { margin: 0; font-family: sans-serif; }
canvas { display: block; }
.score { color: #0f0; }
.hud { position: fixed; }
.over { display: none; }
button { cursor: pointer; }
</style>
</head>
<body>
<h1>Snake</h1>
<button id="start">Start</button>
<canvas id="board"></canvas>
<script>
function tick() { move(); draw(); }
</script>
</body>
</html>`

func bundle(html string) artifact.Bundle {
	return artifact.Bundle{"index.html": html}
}

func TestRunPassesValidApplication(t *testing.T) {
	report := Run(bundle(goodPage), Context{Request: "build a snake game"})
	require.True(t, report.OverallPass, "errors: %v", report.Errors())
	require.Equal(t, "application", report.ArtifactType)
	require.Len(t, report.Results, 6)
}

func TestRunIsIdempotent(t *testing.T) {
	b := bundle(goodPage)
	first := Run(b, Context{Request: "build a snake game"})
	second := Run(b, Context{Request: "build a snake game"})
	require.Equal(t, first, second)
}

func TestPlanDocumentFailsArtifactTypeGate(t *testing.T) {
	report := Run(bundle("# Implementation Plan\n- step 1: scaffold\n- step 2: style\n- step 3: ship"), Context{})
	require.False(t, report.OverallPass)
	found := false
	for _, e := range report.Errors() {
		if strings.Contains(e, "[PLAN]") {
			found = true
		}
	}
	require.True(t, found, "expected a [PLAN]-tagged error, got %v", report.Errors())
	require.NotEmpty(t, report.RepairHints)
}

func TestHTMLValidityGateFlagsMissingSkeleton(t *testing.T) {
	report := Run(bundle("<html><body>no doctype, never closed"), Context{})
	require.False(t, report.OverallPass)
	errs := strings.Join(report.Errors(), "\n")
	require.Contains(t, errs, "<!DOCTYPE html>")
	require.Contains(t, errs, "</html>")
}

func TestHTMLValidityGateFlagsEscapedEntities(t *testing.T) {
	report := Run(bundle("&lt;html&gt;&lt;body&gt;escaped&lt;/body&gt;&lt;/html&gt;"), Context{})
	require.False(t, report.OverallPass)
	require.Contains(t, strings.Join(report.Errors(), "\n"), "entity-escaped")
}

func TestStylingGateWarnsButNeverBlocks(t *testing.T) {
	bare := `<!DOCTYPE html><html lang="en"><head><meta name="viewport" content="w"><title>Snake game</title></head><body><h1>Snake</h1><button>go</button></body></html>`
	report := Run(bundle(bare), Context{Request: "a snake game"})
	require.True(t, report.OverallPass, "styling warnings must not block: %v", report.Errors())
	require.NotEmpty(t, report.Warnings())
}

func TestRuntimeGateWarnsOnUnbalancedBraces(t *testing.T) {
	page := strings.Replace(goodPage, "function tick() { move(); draw(); }", "function tick() { move(); draw();", 1)
	report := Run(bundle(page), Context{})
	require.True(t, report.OverallPass)
	require.Contains(t, strings.Join(report.Warnings(), "\n"), "braces unbalanced")
}

func TestTaskMatchGateDefiniteMismatch(t *testing.T) {
	shop := strings.ReplaceAll(goodPage, "Snake Game", "Web Shop")
	shop = strings.ReplaceAll(shop, "<h1>Snake</h1>", "<h1>Product Cart Checkout</h1>")
	report := Run(bundle(shop), Context{Request: "build a snake game"})
	require.False(t, report.OverallPass)
	require.Contains(t, strings.Join(report.Errors(), "\n"), "the request asked for")
}

func TestTaskMatchGateUndeterminedWarns(t *testing.T) {
	vague := `<!DOCTYPE html><html lang="en"><head><meta name="viewport" content="w"><title>Untitled</title><style>a{}b{}c{}d{}e{}</style></head><body><h1>Welcome</h1><button>ok</button></body></html>`
	report := Run(bundle(vague), Context{Request: "build a snake game"})
	require.True(t, report.OverallPass, "undetermined output type must warn, not block")
	require.Contains(t, strings.Join(report.Warnings(), "\n"), "could not determine")
}

func TestCategoriesMatchWholeWordsOnly(t *testing.T) {
	require.Empty(t, categories("the response was malformed and the platform crashed"))
	require.Equal(t, []string{"form"}, categories("a contact form with validation"))
}

func TestTaskMatchGateSkippedWithoutContext(t *testing.T) {
	report := Run(bundle(goodPage), Context{})
	require.True(t, report.OverallPass)
}

func TestHintsDeduplicate(t *testing.T) {
	out := hints([]string{"[PLAN] a", "[PLAN] b"})
	require.Len(t, out, 1)
}
