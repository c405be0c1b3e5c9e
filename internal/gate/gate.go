// Package gate runs the fixed quality-validation pipeline over a generated
// bundle. Gates are pure functions of the bundle; they never mutate it and
// never touch disk. Errors block a write, warnings never do.
package gate

import "github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/artifact"

// Context carries request-side information some gates need, most notably the
// expected intent for the task-match gate. The zero value disables those
// checks.
type Context struct {
	Request string
}

// Result is one gate's verdict. Errors and warnings are kept apart: any
// error blocks, warnings are advisory only.
type Result struct {
	Gate     string   `json:"gate"`
	Passed   bool     `json:"passed"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r Result) blocking() bool { return len(r.Errors) > 0 }

// Report aggregates every gate result for one bundle.
type Report struct {
	OverallPass  bool     `json:"overallPass"`
	ArtifactType string   `json:"artifactType"`
	Results      []Result `json:"results"`
	RepairHints  []string `json:"repairHints,omitempty"`
}

// Errors flattens every gate's errors.
func (r Report) Errors() []string {
	var out []string
	for _, res := range r.Results {
		out = append(out, res.Errors...)
	}
	return out
}

// Warnings flattens every gate's warnings.
func (r Report) Warnings() []string {
	var out []string
	for _, res := range r.Results {
		out = append(out, res.Warnings...)
	}
	return out
}

// Gate validates one quality dimension of a bundle.
type Gate interface {
	Name() string
	Check(b artifact.Bundle, gctx Context) Result
}

// pipeline is the fixed gate order. Every gate always runs so a failing
// report is complete for forensics; there is no short-circuit.
var pipeline = []Gate{
	artifactTypeGate{},
	htmlValidityGate{},
	stylingGate{},
	runtimeSanityGate{},
	accessibilityGate{},
	taskMatchGate{},
}

// Run executes the full pipeline. OverallPass is the conjunction of every
// gate's blocking verdict: the artifact-type, HTML validity, and task-match
// gates block on failure, and an error (not a warning) from any other gate
// blocks as well.
func Run(b artifact.Bundle, gctx Context) Report {
	report := Report{OverallPass: true, ArtifactType: detectArtifactType(b)}
	for _, g := range pipeline {
		res := g.Check(b, gctx)
		res.Gate = g.Name()
		res.Passed = !res.blocking()
		if res.blocking() {
			report.OverallPass = false
		}
		report.Results = append(report.Results, res)
	}
	report.RepairHints = hints(report.Errors())
	return report
}
