// Package intent classifies a change request into an execution mode with an
// allow/forbid action list. The classifier is keyword scoring on purpose:
// guard rejections quote its output, so every decision has to be explainable
// from the request text alone.
package intent

import "strings"

// Mode is the execution mode a change request resolves to.
type Mode string

const (
	ModeRepair    Mode = "REPAIR_MODE"
	ModeFeature   Mode = "FEATURE_MODE"
	ModeFullRegen Mode = "FULL_REGEN"
)

// Analysis is the classifier output. It is recomputed per request and never
// persisted.
type Analysis struct {
	Mode             Mode     `json:"mode"`
	Confidence       float64  `json:"confidence"`
	Constraints      []string `json:"constraints"`
	AllowedActions   []string `json:"allowedActions"`
	ForbiddenActions []string `json:"forbiddenActions"`
}

var repairKeywords = []string{
	"fix", "debug", "broken", "bug", "error", "issue", "problem",
	"repair", "wrong", "not working", "typo", "crash", "glitch",
}

var featureKeywords = []string{
	"add", "create", "new", "implement", "include", "insert",
	"build", "extend", "feature", "another", "section",
}

var regenKeywords = []string{
	"redesign", "rebuild", "recreate", "overhaul", "revamp",
	"from scratch", "start over", "completely new", "remake",
}

var explicitRegenPhrases = []string{"from scratch", "start over"}

// Classify maps a free-text change request to an execution mode.
//
// Decision order: an explicit regen phrase or a regen score of 2 or more
// wins outright; otherwise repair beats feature only on a strictly greater
// score, so ties fall to feature mode.
func Classify(request string) Analysis {
	text := strings.ToLower(request)

	repairScore := score(text, repairKeywords)
	featureScore := score(text, featureKeywords)
	regenScore := score(text, regenKeywords)

	if regenScore >= 2 || containsAny(text, explicitRegenPhrases) {
		return Analysis{
			Mode:           ModeFullRegen,
			Confidence:     0.9,
			Constraints:    []string{},
			AllowedActions: []string{"rewrite_all_files", "change_design_tokens", "restructure_layout"},
		}
	}

	if repairScore > featureScore {
		return Analysis{
			Mode:       ModeRepair,
			Confidence: confidence(repairScore),
			Constraints: []string{
				"do not change colors, fonts, or spacing",
				"do not restructure the page layout",
				"touch only the code related to the reported problem",
			},
			AllowedActions: []string{"edit_existing_blocks", "fix_logic", "correct_text"},
			ForbiddenActions: []string{
				"rewrite_full_files",
				"change_design_tokens",
				"add_new_components",
			},
		}
	}

	return Analysis{
		Mode:       ModeFeature,
		Confidence: confidence(featureScore),
		Constraints: []string{
			"inherit the existing design tokens",
			"keep every existing feature in place",
		},
		AllowedActions: []string{"add_components", "extend_styles", "add_scripts"},
		ForbiddenActions: []string{
			"remove_existing_features",
			"override_design_tokens_wholesale",
		},
	}
}

// confidence maps a keyword score to [0.5, 0.95].
func confidence(score int) float64 {
	c := 0.5 + 0.15*float64(score)
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func score(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
