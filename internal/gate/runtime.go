package gate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
)

// runtimeSanityGate is a warning-only smell test over script content. Brace
// counting is crude but it reliably catches truncated generations, which is
// the dominant script failure in practice.
type runtimeSanityGate struct{}

func (runtimeSanityGate) Name() string { return "runtime-sanity" }

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	anyTagRe      = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
)

const (
	proseDumpMinChars = 1000
	proseDumpMaxTags  = 5
)

func (runtimeSanityGate) Check(b artifact.Bundle, _ Context) Result {
	var res Result
	html := b.HTML()

	var script strings.Builder
	for _, m := range scriptBlockRe.FindAllStringSubmatch(html, -1) {
		script.WriteString(m[1])
		script.WriteString("\n")
	}
	for _, name := range b.Names() {
		if strings.HasSuffix(name, ".js") {
			script.WriteString(b[name])
			script.WriteString("\n")
		}
	}
	if js := script.String(); strings.TrimSpace(js) != "" {
		if open, close := strings.Count(js, "{"), strings.Count(js, "}"); open != close {
			res.Warnings = append(res.Warnings, fmt.Sprintf("script braces unbalanced (%d open, %d close); generation may be truncated", open, close))
		}
	}

	if len(html) > proseDumpMinChars && len(anyTagRe.FindAllString(html, proseDumpMaxTags+1)) <= proseDumpMaxTags {
		res.Warnings = append(res.Warnings, "large text body with almost no markup; output looks like prose, not an application")
	}
	return res
}
