package gate

import "strings"

// hintTable maps error substrings to canned remediation instructions. On a
// retry the orchestrator appends the matched hints to the regeneration
// prompt, so each hint is phrased as an instruction to the generator.
var hintTable = []struct {
	match string
	hint  string
}{
	{"[PLAN]", "Return the finished application as complete HTML/CSS/JS files, not a plan or description of the work."},
	{"entity-escaped", "Emit raw HTML. Do not HTML-encode the angle brackets of your own output."},
	{"<!DOCTYPE html>", "Begin index.html with <!DOCTYPE html>."},
	{"missing <html>", "Wrap the document in <html>...</html>."},
	{"missing <body>", "Include a <body> element containing the page content."},
	{"closing </html>", "Close the document with </html>; the previous output was truncated."},
	{"no HTML document", "Produce an index.html file; the previous output contained none."},
	{"the request asked for", "Re-read the request and build that kind of application; the previous output was a different kind of page."},
}

// hints resolves canned remediation instructions for a set of gate errors.
// Duplicate hints collapse.
func hints(errors []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range errors {
		for _, h := range hintTable {
			if strings.Contains(e, h.match) && !seen[h.hint] {
				seen[h.hint] = true
				out = append(out, h.hint)
			}
		}
	}
	return out
}
