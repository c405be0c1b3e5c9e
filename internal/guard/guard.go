// Package guard decides whether a candidate artifact may replace a project's
// current one. The guard exists for one reason: generators asked to fix a
// typo will happily redesign the page around the fix. Drift budgets keyed on
// the request's execution mode catch that before anything touches disk.
package guard

import (
	"fmt"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/fingerprint"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/intent"
)

// Drift budgets per mode. Tests elsewhere in the pipeline are written
// against these literal values; do not tune them.
const (
	RepairMaxDOMDrift  = 10
	FeatureMaxDOMDrift = 30
)

// Stored is the persisted fingerprint side of the comparison.
type Stored struct {
	DOMSignature   string `json:"domSignature"`
	StyleSignature string `json:"styleSignature"`
}

// Decision is the guard verdict plus everything a human needs to understand
// it. The audit trail of decisions, not the HTML diff, is what explains a
// blocked edit after the fact.
type Decision struct {
	Approved        bool     `json:"approved"`
	Reason          string   `json:"reason"`
	Mode            string   `json:"mode"`
	DOMDrift        int      `json:"domDrift"`
	StyleDrift      bool     `json:"styleDrift"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Evaluate compares a candidate artifact against the stored fingerprint
// under the given mode's budget.
//
// Style drift is a boolean inequality of a lossy signature, coarser than the
// dom drift percentage. It can over- and under-trigger; that trade-off is
// intentional and load-bearing, see the package tests before changing it.
func Evaluate(mode intent.Mode, stored Stored, html, css string) Decision {
	candidateDOM := fingerprint.DOMSignature(html)
	candidateStyle := fingerprint.CSSSignature(html + "\n" + css)

	d := Decision{
		Mode:     string(mode),
		DOMDrift: fingerprint.Drift(stored.DOMSignature, candidateDOM),
	}
	if stored.StyleSignature != "" || candidateStyle != "" {
		d.StyleDrift = candidateStyle != stored.StyleSignature
	}

	switch mode {
	case intent.ModeRepair:
		switch {
		case d.DOMDrift > RepairMaxDOMDrift:
			d.Reason = fmt.Sprintf("structure drifted %d%% during a repair (budget %d%%)", d.DOMDrift, RepairMaxDOMDrift)
			d.Recommendations = append(d.Recommendations,
				"limit the change to the broken element",
				"keep surrounding markup exactly as it was")
		case d.StyleDrift:
			d.Reason = "styling changed during a repair; repairs must not move colors or fonts"
			d.Recommendations = append(d.Recommendations,
				"restore the original color and font tokens",
				"resubmit as a feature or redesign request if the new look is wanted")
		default:
			d.Approved = true
			d.Reason = "within repair budget"
		}
	case intent.ModeFeature:
		if d.DOMDrift > FeatureMaxDOMDrift {
			d.Reason = fmt.Sprintf("structure drifted %d%% while adding a feature (budget %d%%)", d.DOMDrift, FeatureMaxDOMDrift)
			d.Recommendations = append(d.Recommendations,
				"add the new section without reworking existing ones",
				"request a redesign explicitly if the whole page should change")
		} else {
			d.Approved = true
			d.Reason = "within feature budget"
		}
	default:
		// Full regeneration: always approved, drift still reported for the log.
		d.Approved = true
		d.Reason = "full regeneration requested; budgets do not apply"
	}
	return d
}
