package gate

import (
	"regexp"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
)

// accessibilityGate never blocks; its warnings feed the repair hints on the
// next regeneration instead.
type accessibilityGate struct{}

func (accessibilityGate) Name() string { return "accessibility" }

var (
	viewportRe    = regexp.MustCompile(`(?i)<meta[^>]+name=["']?viewport`)
	interactiveRe = regexp.MustCompile(`(?i)<(button|a\s|a>|input|select|textarea)`)
	langAttrRe    = regexp.MustCompile(`(?i)<html[^>]+lang=`)
)

func (accessibilityGate) Check(b artifact.Bundle, _ Context) Result {
	var res Result
	html := b.HTML()
	if strings.TrimSpace(html) == "" {
		return res
	}
	if !viewportRe.MatchString(html) {
		res.Warnings = append(res.Warnings, "missing viewport meta tag")
	}
	if !interactiveRe.MatchString(html) {
		res.Warnings = append(res.Warnings, "no interactive elements (button, link, or form control) found")
	}
	if !langAttrRe.MatchString(html) {
		res.Warnings = append(res.Warnings, "missing lang attribute on <html>")
	}
	return res
}
