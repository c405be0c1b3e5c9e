package gate

import (
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
)

// htmlValidityGate checks the document skeleton. It is deliberately not an
// HTML parser: the four landmarks below are enough to tell a servable page
// from a fragment or an escaped-entity dump.
type htmlValidityGate struct{}

func (htmlValidityGate) Name() string { return "html-validity" }

func (htmlValidityGate) Check(b artifact.Bundle, _ Context) Result {
	var res Result
	html := b.HTML()
	if strings.TrimSpace(html) == "" {
		res.Errors = append(res.Errors, "bundle contains no HTML document")
		return res
	}
	lower := strings.ToLower(html)

	if strings.Contains(lower, "&lt;html") {
		res.Errors = append(res.Errors, "document is entity-escaped (&lt;html found); generator double-encoded its output")
	}
	if !strings.Contains(lower, "<!doctype html") {
		res.Errors = append(res.Errors, "missing <!DOCTYPE html> declaration")
	}
	if !strings.Contains(lower, "<html") {
		res.Errors = append(res.Errors, "missing <html> tag")
	}
	if !strings.Contains(lower, "<body") {
		res.Errors = append(res.Errors, "missing <body> tag")
	}
	if !strings.Contains(lower, "</html>") {
		res.Errors = append(res.Errors, "missing closing </html> tag")
	}
	return res
}
