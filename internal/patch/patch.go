// Package patch applies ordered, anchor-addressed edits to a text buffer.
// Patches that miss their anchor are skipped, never force-applied, so a
// partially matching plan degrades instead of corrupting the buffer.
package patch

// Op is the edit operation a patch performs at its anchor.
type Op string

const (
	OpReplaceBlock Op = "REPLACE_BLOCK"
	OpInsertBefore Op = "INSERT_BEFORE"
	OpInsertAfter  Op = "INSERT_AFTER"
	OpDeleteBlock  Op = "DELETE_BLOCK"
)

// AnchorType selects how an anchor value is matched against the buffer.
type AnchorType string

const (
	AnchorString AnchorType = "STRING"
	AnchorRegex  AnchorType = "REGEX"
)

// Anchor is the needle that locates the edit point.
type Anchor struct {
	Type  AnchorType `json:"type"`
	Value string     `json:"value"`
}

// Patch is a single anchor-addressed edit.
type Patch struct {
	Op      Op     `json:"op"`
	Anchor  Anchor `json:"anchor"`
	Content string `json:"content,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Set is an ordered patch plan as delivered by the generator, with its
// declared change budget.
type Set struct {
	Patches           []Patch `json:"patches"`
	RedesignRequested bool    `json:"redesignRequested"`
	MaxEdits          int     `json:"maxEdits"`
	MaxNewLines       int     `json:"maxNewLines"`
}

// Result records the fate of one patch.
type Result struct {
	Index   int    `json:"index"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// Outcome is the aggregate of applying a patch list.
type Outcome struct {
	Buffer         string   `json:"-"`
	AppliedPatches int      `json:"appliedPatches"`
	SkippedPatches int      `json:"skippedPatches"`
	InvalidPatches int      `json:"invalidPatches"`
	Results        []Result `json:"results"`
}
