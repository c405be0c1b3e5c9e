package guard

import (
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/fingerprint"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/intent"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

const baseHTML = `<!DOCTYPE html><html><body>
<nav><a href="#">Home</a></nav>
<section class="hero"><h1>Welcom</h1><style>h1 { color: #ff6b35; font-family: Inter; }</style></section>
<footer><p>fin</p></footer>
</body></html>`

func storedFor(html, css string) Stored {
	return Stored{
		DOMSignature:   fingerprint.DOMSignature(html),
		StyleSignature: fingerprint.CSSSignature(html + "\n" + css),
	}
}

func TestRepairIdenticalApproved(t *testing.T) {
	d := Evaluate(intent.ModeRepair, storedFor(baseHTML, ""), baseHTML, "")
	tester.True(t, d.Approved, d.Reason)
	tester.Eq(t, d.DOMDrift, 0)
	tester.False(t, d.StyleDrift)
}

func TestRepairTypoFixWithColorChangeBlocked(t *testing.T) {
	// Same tag structure, one new color token: the classic quiet redesign.
	fixed := "<!DOCTYPE html><html><body>\n<nav><a href=\"#\">Home</a></nav>\n<section class=\"hero\"><h1>Welcome</h1><style>h1 { color: #2ec4b6; font-family: Inter; }</style></section>\n<footer><p>fin</p></footer>\n</body></html>"
	d := Evaluate(intent.ModeRepair, storedFor(baseHTML, ""), fixed, "")
	tester.False(t, d.Approved)
	tester.True(t, d.StyleDrift)
	tester.Eq(t, d.DOMDrift, 0)
	tester.True(t, len(d.Recommendations) > 0, "blocked decisions must carry recommendations")
}

func TestRepairExcessDomDriftBlocked(t *testing.T) {
	redone := `<!DOCTYPE html><html><body><main><article><header><h2>New</h2></header><aside>x</aside></article></main></body></html>`
	d := Evaluate(intent.ModeRepair, storedFor(baseHTML, ""), redone, "")
	tester.False(t, d.Approved)
	tester.True(t, d.DOMDrift > RepairMaxDOMDrift, "expected large drift")
}

func TestFeatureToleratesStyleDrift(t *testing.T) {
	withSection := "<!DOCTYPE html><html><body>\n<nav><a href=\"#\">Home</a></nav>\n<section class=\"hero\"><h1>Welcom</h1><style>h1 { color: #ff6b35; font-family: Inter; } .cards { color: #123456; }</style></section>\n<footer><p>fin</p></footer>\n</body></html>"
	d := Evaluate(intent.ModeFeature, storedFor(baseHTML, ""), withSection, "")
	tester.True(t, d.Approved, d.Reason)
	tester.True(t, d.StyleDrift, "style moved but feature mode tolerates it")
}

func TestFullRegenAlwaysApproved(t *testing.T) {
	d := Evaluate(intent.ModeFullRegen, storedFor(baseHTML, ""), "<html><body><p>totally different</p></body></html>", "")
	tester.True(t, d.Approved)
	tester.True(t, d.DOMDrift > 0, "drift still reported for the log")
}
