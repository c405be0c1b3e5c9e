package patch

import (
	"strings"
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

const buf = `<html><body><h1>Hello Wrold</h1><p>intro</p><div class="old">legacy</div></body></html>`

func TestApplyReplaceBlock(t *testing.T) {
	out := Apply(buf, []Patch{{
		Op:      OpReplaceBlock,
		Anchor:  Anchor{Type: AnchorString, Value: "<h1>Hello Wrold</h1>"},
		Content: "<h1>Hello World</h1>",
	}})
	tester.Eq(t, out.AppliedPatches, 1)
	tester.Contains(t, out.Buffer, "Hello World")
	tester.False(t, strings.Contains(out.Buffer, "Wrold"))
}

func TestApplyInsertBeforeAfter(t *testing.T) {
	out := Apply(buf, []Patch{
		{Op: OpInsertBefore, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<hr>"},
		{Op: OpInsertAfter, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<nav></nav>"},
	})
	tester.Eq(t, out.AppliedPatches, 2)
	tester.Contains(t, out.Buffer, "<hr><p>intro</p><nav></nav>")
}

func TestApplyDeleteBlock(t *testing.T) {
	out := Apply(buf, []Patch{{
		Op:     OpDeleteBlock,
		Anchor: Anchor{Type: AnchorRegex, Value: `<div class="old">.*?</div>`},
	}})
	tester.Eq(t, out.AppliedPatches, 1)
	tester.False(t, strings.Contains(out.Buffer, "legacy"))
}

func TestApplyMissingAnchorSkips(t *testing.T) {
	out := Apply(buf, []Patch{{
		Op:      OpReplaceBlock,
		Anchor:  Anchor{Type: AnchorString, Value: "<h2>absent</h2>"},
		Content: "<h2>x</h2>",
	}})
	tester.Eq(t, out.SkippedPatches, 1)
	tester.Eq(t, out.Buffer, buf, "buffer must be unchanged on skip")
}

func TestApplyInvalidRegexSkips(t *testing.T) {
	out := Apply(buf, []Patch{{
		Op:     OpDeleteBlock,
		Anchor: Anchor{Type: AnchorRegex, Value: "([unclosed"},
	}})
	tester.Eq(t, out.SkippedPatches, 1)
	tester.Eq(t, out.Buffer, buf)
}

func TestApplyForbiddenZoneInvalid(t *testing.T) {
	out := Apply(buf, []Patch{{
		Op:      OpReplaceBlock,
		Anchor:  Anchor{Type: AnchorString, Value: "<html>"},
		Content: "<!DOCTYPE html><html>",
	}})
	tester.Eq(t, out.InvalidPatches, 1)
	tester.Eq(t, out.Buffer, buf)
}

func TestApplyContentCeiling(t *testing.T) {
	content := strings.Repeat("<p>line</p>\n", MaxContentLines+1)
	out := Apply(buf, []Patch{{
		Op:      OpInsertAfter,
		Anchor:  Anchor{Type: AnchorString, Value: "<p>intro</p>"},
		Content: content,
	}})
	tester.Eq(t, out.InvalidPatches, 1)
	tester.Eq(t, out.Buffer, buf)
}

func TestApplyOrderSensitive(t *testing.T) {
	// The first patch rewrites the text the second patch anchors on.
	out := Apply("alpha beta", []Patch{
		{Op: OpReplaceBlock, Anchor: Anchor{Type: AnchorString, Value: "beta"}, Content: "gamma"},
		{Op: OpReplaceBlock, Anchor: Anchor{Type: AnchorString, Value: "gamma"}, Content: "delta"},
	})
	tester.Eq(t, out.AppliedPatches, 2)
	tester.Eq(t, out.Buffer, "alpha delta")
}

func TestApplySetEditBudget(t *testing.T) {
	out := ApplySet(buf, Set{
		MaxEdits: 1,
		Patches: []Patch{
			{Op: OpInsertBefore, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<hr>"},
			{Op: OpInsertAfter, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<nav></nav>"},
		},
	})
	tester.Eq(t, out.AppliedPatches, 1)
	tester.Eq(t, out.SkippedPatches, 1)
	tester.Contains(t, out.Results[1].Reason, "edit budget")
	tester.False(t, strings.Contains(out.Buffer, "<nav></nav>"))
}

func TestApplySetLineBudget(t *testing.T) {
	out := ApplySet(buf, Set{
		MaxNewLines: 2,
		Patches: []Patch{
			{Op: OpInsertBefore, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<hr>\n<hr>"},
			{Op: OpInsertAfter, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<nav></nav>"},
		},
	})
	tester.Eq(t, out.AppliedPatches, 1)
	tester.Eq(t, out.SkippedPatches, 1)
	tester.Contains(t, out.Results[1].Reason, "line budget")
	tester.Contains(t, out.Buffer, "<hr>\n<hr>")
}

func TestApplySetZeroBudgetsUnlimited(t *testing.T) {
	out := ApplySet(buf, Set{Patches: []Patch{
		{Op: OpInsertBefore, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<hr>"},
		{Op: OpInsertAfter, Anchor: Anchor{Type: AnchorString, Value: "<p>intro</p>"}, Content: "<nav></nav>"},
	}})
	tester.Eq(t, out.AppliedPatches, 2)
}

func TestApplyNoOpSetReturnsBufferUnchanged(t *testing.T) {
	out := Apply(buf, nil)
	tester.Eq(t, out.Buffer, buf)
	tester.Eq(t, out.AppliedPatches, 0)
}
