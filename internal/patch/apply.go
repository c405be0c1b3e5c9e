package patch

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxContentLines caps replace/insert content per patch. Anything larger is
// a rewrite pretending to be a patch and is marked invalid.
const MaxContentLines = 500

// forbiddenZones are document regions no patch may anchor on or emit:
// corrupting them breaks the document beyond what a later patch can repair.
var forbiddenZones = []string{"<!DOCTYPE", "<meta charset"}

// Apply runs patches with no declared change budget.
func Apply(buffer string, patches []Patch) Outcome {
	return ApplySet(buffer, Set{Patches: patches})
}

// ApplySet runs the plan's patches strictly in list order against the
// progressively mutated buffer, honoring the plan's declared budgets. An
// earlier patch can legitimately change what a later anchor sees; that
// ordering is part of the contract. A zero budget field means unlimited.
func ApplySet(buffer string, set Set) Outcome {
	out := Outcome{Buffer: buffer, Results: make([]Result, 0, len(set.Patches))}
	addedLines := 0
	for i, p := range set.Patches {
		if set.MaxEdits > 0 && out.AppliedPatches >= set.MaxEdits {
			out.SkippedPatches++
			out.Results = append(out.Results, Result{Index: i, Reason: fmt.Sprintf("edit budget of %d exhausted", set.MaxEdits)})
			continue
		}
		if reason, ok := validate(p); !ok {
			out.InvalidPatches++
			out.Results = append(out.Results, Result{Index: i, Reason: reason})
			continue
		}
		start, end, found := locate(out.Buffer, p.Anchor)
		if !found {
			out.SkippedPatches++
			out.Results = append(out.Results, Result{Index: i, Reason: "anchor not found"})
			continue
		}
		grown := netLines(p, out.Buffer[start:end])
		if set.MaxNewLines > 0 && addedLines+grown > set.MaxNewLines {
			out.SkippedPatches++
			out.Results = append(out.Results, Result{Index: i, Reason: fmt.Sprintf("line budget of %d exceeded", set.MaxNewLines)})
			continue
		}
		out.Buffer = splice(out.Buffer, start, end, p)
		addedLines += grown
		out.AppliedPatches++
		out.Results = append(out.Results, Result{Index: i, Applied: true})
	}
	return out
}

// netLines is the patch's net line growth: what it adds minus what it
// removes at the anchored span.
func netLines(p Patch, replaced string) int {
	switch p.Op {
	case OpReplaceBlock:
		return lineCount(p.Content) - lineCount(replaced)
	case OpInsertBefore, OpInsertAfter:
		return lineCount(p.Content)
	case OpDeleteBlock:
		return -lineCount(replaced)
	}
	return 0
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// validate rejects patches that touch forbidden zones or exceed the content
// ceiling. Invalid patches are reported, never partially applied.
func validate(p Patch) (string, bool) {
	switch p.Op {
	case OpReplaceBlock, OpInsertBefore, OpInsertAfter, OpDeleteBlock:
	default:
		return fmt.Sprintf("unknown op %q", p.Op), false
	}
	for _, zone := range forbiddenZones {
		if strings.Contains(p.Anchor.Value, zone) || strings.Contains(p.Content, zone) {
			return fmt.Sprintf("patch touches forbidden zone %q", zone), false
		}
	}
	if p.Op != OpDeleteBlock {
		if lines := strings.Count(p.Content, "\n") + 1; lines > MaxContentLines {
			return fmt.Sprintf("content exceeds %d lines", MaxContentLines), false
		}
	}
	return "", true
}

// locate finds the anchored span. A regex that does not compile is treated
// as not-found rather than aborting the whole set.
func locate(buffer string, a Anchor) (start, end int, found bool) {
	value := a.Value
	if value == "" {
		return 0, 0, false
	}
	switch a.Type {
	case AnchorRegex:
		re, err := regexp.Compile(value)
		if err != nil {
			return 0, 0, false
		}
		loc := re.FindStringIndex(buffer)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0], loc[1], true
	default:
		idx := strings.Index(buffer, value)
		if idx < 0 {
			return 0, 0, false
		}
		return idx, idx + len(value), true
	}
}

func splice(buffer string, start, end int, p Patch) string {
	switch p.Op {
	case OpReplaceBlock:
		return buffer[:start] + p.Content + buffer[end:]
	case OpDeleteBlock:
		return buffer[:start] + buffer[end:]
	case OpInsertBefore:
		return buffer[:start] + p.Content + buffer[start:]
	case OpInsertAfter:
		return buffer[:end] + p.Content + buffer[end:]
	}
	return buffer
}
