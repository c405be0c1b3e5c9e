// Package project holds per-project records: the manifest written at
// inception and the fingerprint state recomputed on every accepted write.
package project

import (
	"time"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/fingerprint"
)

// rawHeadLen bounds the truncated raw snapshots kept alongside signatures
// for cheap later comparison.
const rawHeadLen = 1500

// TokenHints are the design tokens extracted from the first request.
type TokenHints struct {
	Colors []string `json:"colors,omitempty"`
	Fonts  []string `json:"fonts,omitempty"`
	Radius string   `json:"radius,omitempty"`
}

// Manifest is created once at project inception and is read-only afterward
// except for explicit token updates.
type Manifest struct {
	ProjectID       string     `json:"projectId"`
	Name            string     `json:"name"`
	CreatedAt       time.Time  `json:"createdAt"`
	OriginalRequest string     `json:"originalRequest"`
	CoreIntent      string     `json:"coreIntent"`
	NonNegotiables  []string   `json:"nonNegotiables,omitempty"`
	DesignTokens    TokenHints `json:"designTokens"`
}

// CurrentState is the fingerprint of the project's on-disk artifact,
// recomputed on every accepted write.
type CurrentState struct {
	Fingerprint    fingerprint.Fingerprint `json:"fingerprint"`
	StyleSignature string                  `json:"styleSignature"`
	HTMLHead       string                  `json:"htmlHead"`
	CSSHead        string                  `json:"cssHead"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// State is the persisted record for one project.
type State struct {
	ProjectID string       `json:"projectId"`
	Manifest  Manifest     `json:"manifest"`
	Current   CurrentState `json:"current"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewCurrentState fingerprints an artifact and keeps truncated raw heads.
func NewCurrentState(html, css string) CurrentState {
	return CurrentState{
		Fingerprint:    fingerprint.Compute(html),
		StyleSignature: fingerprint.CSSSignature(html + "\n" + css),
		HTMLHead:       head(html),
		CSSHead:        head(css),
		UpdatedAt:      time.Now().UTC(),
	}
}

func head(s string) string {
	if len(s) > rawHeadLen {
		return s[:rawHeadLen]
	}
	return s
}
