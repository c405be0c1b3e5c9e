package builder

import (
	"errors"
	"fmt"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/gate"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/guard"
)

// ErrProjectNotFound reports a modify/undo call against an unknown project.
var ErrProjectNotFound = errors.New("builder: project not found")

// RedesignRequestedError is returned when a modify-only flow turns out to be
// a full redesign. It is never auto-resolved: the caller must come back with
// an explicit regeneration request.
type RedesignRequestedError struct {
	ProjectID string
	Request   string
}

func (e *RedesignRequestedError) Error() string {
	return fmt.Sprintf("redesign requested for project %s; explicit confirmation required", e.ProjectID)
}

// GuardBlockedError carries the consistency-guard verdict that refused a
// write, drift numbers and recommendations included.
type GuardBlockedError struct {
	Decision guard.Decision
}

func (e *GuardBlockedError) Error() string {
	return fmt.Sprintf("consistency guard blocked the change: %s", e.Decision.Reason)
}

// GateFailureError carries the gate report that refused a write during a
// modify flow. The live project files are untouched.
type GateFailureError struct {
	Report gate.Report
}

func (e *GateFailureError) Error() string {
	return fmt.Sprintf("quality gates failed: %d error(s)", len(e.Report.Errors()))
}

// GenerationMalformedError reports generator output that stayed unparsable
// through the retry budget.
type GenerationMalformedError struct {
	Detail string
}

func (e *GenerationMalformedError) Error() string {
	return fmt.Sprintf("generator output unparsable: %s", e.Detail)
}
