package gate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
)

// artifactTypeGate catches the classic failure mode of plan-following
// generators: returning the rendered plan document instead of the
// application it describes.
type artifactTypeGate struct{}

func (artifactTypeGate) Name() string { return "artifact-type" }

var (
	markdownHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	leadingBulletRe   = regexp.MustCompile(`(?m)^\s*[-*]\s+\S`)
	planTitleRe       = regexp.MustCompile(`(?i)implementation\s+plan|build\s+plan|project\s+plan`)
)

func (artifactTypeGate) Check(b artifact.Bundle, _ Context) Result {
	var res Result
	html := b.HTML()
	lower := strings.ToLower(html)
	hasHTMLTag := strings.Contains(lower, "<html")

	if !hasHTMLTag {
		switch {
		case planTitleRe.MatchString(html):
			res.Errors = append(res.Errors, "[PLAN] output is a plan document, not an application")
		case markdownHeadingRe.MatchString(html):
			res.Errors = append(res.Errors, "[PLAN] output contains markdown headings without any <html> tag")
		case countLeadingBullets(html) >= 3:
			res.Errors = append(res.Errors, "[PLAN] output is a bullet list without any HTML")
		}
	} else if planTitleRe.MatchString(outputSummary(html)) {
		res.Errors = append(res.Errors, "[PLAN] document titles itself as a plan")
	}
	return res
}

func countLeadingBullets(text string) int {
	return len(leadingBulletRe.FindAllString(text, -1))
}

// detectArtifactType labels the bundle for the report: "application" when it
// looks like a web page, "plan" when it looks like prose/markdown, otherwise
// "unknown".
func detectArtifactType(b artifact.Bundle) string {
	html := b.HTML()
	lower := strings.ToLower(html)
	switch {
	case strings.Contains(lower, "<html") && strings.Contains(lower, "<body"):
		return "application"
	case planTitleRe.MatchString(html) || markdownHeadingRe.MatchString(html):
		return "plan"
	case strings.TrimSpace(html) == "":
		return "unknown"
	default:
		return fmt.Sprintf("unknown(%d files)", len(b))
	}
}
