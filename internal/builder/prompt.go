package builder

import (
	"fmt"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/intent"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/project"
)

const buildWireFormat = `Return every file in a fenced block of the form:
` + "```" + `file:index.html
<!DOCTYPE html>
...
` + "```" + `
Always include index.html. Emit a complete self-contained page: embedded
<style> and <script> are fine, separate styles.css / app.js files are fine
too. Never return prose, plans, or explanations outside the file blocks.`

const patchWireFormat = `Return a single JSON object in a fenced block:
` + "```" + `json
{
  "patches": [
    {
      "op": "REPLACE_BLOCK" | "INSERT_BEFORE" | "INSERT_AFTER" | "DELETE_BLOCK",
      "anchor": {"type": "STRING" | "REGEX", "value": "..."},
      "content": "..."
    }
  ],
  "redesignRequested": false
}
` + "```" + `
Anchors must match text that exists in the current document. Keep each patch
under 500 lines of content. If the request cannot be satisfied without
rebuilding the page from scratch, return an empty patches array with
"redesignRequested": true instead of large rewrites.`

func buildPrompt(manifest project.Manifest, request string, hints []string) string {
	var b strings.Builder
	b.WriteString("You are generating a complete web page.\n\n")
	if manifest.CoreIntent != "" {
		fmt.Fprintf(&b, "Project: %s\n", manifest.CoreIntent)
	}
	fmt.Fprintf(&b, "Request: %s\n", request)
	if len(manifest.NonNegotiables) > 0 {
		b.WriteString("Non-negotiable requirements:\n")
		for _, n := range manifest.NonNegotiables {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	b.WriteString("\n")
	b.WriteString(buildWireFormat)
	if len(hints) > 0 {
		b.WriteString("\n\nA previous attempt failed validation. Fix these issues:\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	return b.String()
}

func patchPrompt(currentHTML, request string, analysis intent.Analysis, reasons []string) string {
	var b strings.Builder
	b.WriteString("You are modifying an existing web page with targeted patches.\n\n")
	fmt.Fprintf(&b, "Mode: %s\n", analysis.Mode)
	if len(analysis.Constraints) > 0 {
		b.WriteString("Constraints:\n")
		for _, c := range analysis.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	fmt.Fprintf(&b, "\nRequest: %s\n\n", request)
	b.WriteString(patchWireFormat)
	b.WriteString("\n\nCurrent document:\n```html\n")
	b.WriteString(currentHTML)
	b.WriteString("\n```\n")
	if len(reasons) > 0 {
		b.WriteString("\nA previous patch plan was rejected. Address these problems:\n")
		for _, r := range reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}
