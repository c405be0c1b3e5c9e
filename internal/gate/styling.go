package gate

import (
	"regexp"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
)

// stylingGate is warning-only: an unstyled page is ugly, not broken.
type stylingGate struct{}

func (stylingGate) Name() string { return "styling-presence" }

var (
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	frameworkRe   = regexp.MustCompile(`(?i)tailwind|bootstrap|bulma|pico\.css|water\.css`)
	stylesheetRe  = regexp.MustCompile(`(?i)<link[^>]+rel=["']?stylesheet`)
	inlineStyleRe = regexp.MustCompile(`(?i)\sstyle=["']`)
)

const (
	minInlineRules = 5
	minInlineAttrs = 5
)

func (stylingGate) Check(b artifact.Bundle, _ Context) Result {
	var res Result
	html := b.HTML()
	css := b.CSS()

	if cssRuleCount(css) >= minInlineRules {
		return res
	}
	ruleTotal := 0
	for _, m := range styleBlockRe.FindAllStringSubmatch(html, -1) {
		ruleTotal += cssRuleCount(m[1])
	}
	switch {
	case ruleTotal >= minInlineRules:
	case frameworkRe.MatchString(html):
	case stylesheetRe.MatchString(html):
	case len(inlineStyleRe.FindAllString(html, -1)) >= minInlineAttrs:
	default:
		res.Warnings = append(res.Warnings, "no substantial styling found (no style block, framework, stylesheet link, or inline styles)")
	}
	return res
}

func cssRuleCount(css string) int {
	return strings.Count(css, "{")
}
