package gate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"
)

// taskMatchGate fails only on a definite mismatch: the request and the
// output each resolve to coarse intent keywords and the sets share nothing.
// When the output type cannot be determined at all it warns instead, because
// an undetectable type is usually a vocabulary gap, not a wrong artifact.
type taskMatchGate struct{}

func (taskMatchGate) Name() string { return "task-match" }

// intentVocab maps a coarse application category to the words that signal it.
var intentVocab = map[string][]string{
	"game":       {"game", "puzzle", "snake", "tetris", "arcade", "score", "player"},
	"dashboard":  {"dashboard", "chart", "analytics", "metric", "graph", "stats"},
	"form":       {"form", "signup", "sign up", "contact", "survey", "register"},
	"portfolio":  {"portfolio", "resume", "cv", "showcase"},
	"blog":       {"blog", "article", "post"},
	"ecommerce":  {"shop", "store", "cart", "product", "checkout", "ecommerce"},
	"landing":    {"landing", "hero", "saas", "startup", "waitlist"},
	"todo":       {"todo", "to-do", "task list", "checklist"},
	"calculator": {"calculator", "convert", "converter"},
	"quiz":       {"quiz", "trivia", "flashcard"},
}

var (
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	headingRe = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
)

// vocabRes holds one word-boundary-anchored pattern per vocab word, so
// "form" never matches inside "malformed" or "platform".
var vocabRes = func() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(intentVocab))
	for cat, words := range intentVocab {
		res := make([]*regexp.Regexp, 0, len(words))
		for _, w := range words {
			res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
		}
		out[cat] = res
	}
	return out
}()

func (taskMatchGate) Check(b artifact.Bundle, gctx Context) Result {
	var res Result
	request := strings.TrimSpace(gctx.Request)
	if request == "" {
		return res
	}

	wanted := categories(strings.ToLower(request))
	produced := categories(strings.ToLower(outputSummary(b.HTML())))

	switch {
	case len(wanted) == 0:
		// The request names no known category; nothing to compare.
	case len(produced) == 0:
		res.Warnings = append(res.Warnings, "could not determine what kind of application the output is")
	case len(intersect(wanted, produced)) == 0:
		res.Errors = append(res.Errors, fmt.Sprintf("output looks like %v but the request asked for %v", produced, wanted))
	}
	return res
}

// outputSummary is the text the output's category is judged on: title,
// top-level headings, and a bounded slice of body text.
func outputSummary(html string) string {
	var parts []string
	if m := titleRe.FindStringSubmatch(html); len(m) == 2 {
		parts = append(parts, m[1])
	}
	for _, m := range headingRe.FindAllStringSubmatch(html, 5) {
		parts = append(parts, m[1])
	}
	stripped := styleBlockRe.ReplaceAllString(html, " ")
	stripped = scriptBlockRe.ReplaceAllString(stripped, " ")
	body := anyTagRe.ReplaceAllString(stripped, " ")
	if len(body) > 600 {
		body = body[:600]
	}
	parts = append(parts, body)
	return strings.Join(parts, " ")
}

func categories(text string) []string {
	var out []string
	for cat, res := range vocabRes {
		for _, re := range res {
			if re.MatchString(text) {
				out = append(out, cat)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func intersect(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	var out []string
	for _, s := range b {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}
