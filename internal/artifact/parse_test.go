package artifact

import (
	"errors"
	"testing"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/patch"
	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/tester"
)

func TestParseBundleFencedBlocks(t *testing.T) {
	raw := "Here is your site.\n```file:index.html\n<html><body>hi</body></html>\n```\n```file:style.css\nbody{color:#333}\n```\n"
	b, err := ParseBundle(raw)
	tester.NoErr(t, err)
	tester.Eq(t, len(b), 2)
	tester.Contains(t, b["index.html"], "<body>hi</body>")
	tester.Contains(t, b["style.css"], "#333")
}

func TestParseBundleMarkerBlocks(t *testing.T) {
	raw := "<!-- FILE: index.html --><html><body>x</body></html><!-- END FILE -->"
	b, err := ParseBundle(raw)
	tester.NoErr(t, err)
	tester.Contains(t, b["index.html"], "<body>x</body>")
}

func TestParseBundleBareHTMLFallback(t *testing.T) {
	raw := "<html><head></head><body><p>bare</p></body></html>"
	b, err := ParseBundle(raw)
	tester.NoErr(t, err)
	tester.Eq(t, b["index.html"], raw)
}

func TestParseBundleKeepsUnrecognizedTextForGating(t *testing.T) {
	raw := "# Implementation Plan\n- step 1: scaffold\n- step 2: style"
	b, err := ParseBundle(raw)
	tester.NoErr(t, err)
	tester.Eq(t, b["index.html"], raw)
}

func TestParseBundleEmptyIsMalformed(t *testing.T) {
	_, err := ParseBundle("   ")
	tester.True(t, errors.Is(err, ErrMalformed))
	_, err = ParseBundle("")
	tester.True(t, errors.Is(err, ErrMalformed))
}

func TestParseBundleRejectsTraversalNames(t *testing.T) {
	raw := "```file:../../etc/passwd\nboom\n```\n```file:index.html\n<html></html>\n```"
	b, err := ParseBundle(raw)
	tester.NoErr(t, err)
	tester.Eq(t, len(b), 1)
	_, ok := b["../../etc/passwd"]
	tester.False(t, ok)
}

func TestStubBundleAlwaysHasHTMLFile(t *testing.T) {
	b := Stub("")
	tester.Contains(t, b["index.html"], "generator returned no usable output")
}

func TestParsePatchSetFencedJSON(t *testing.T) {
	raw := "Patch plan:\n```json\n{\"patches\":[{\"op\":\"replace_block\",\"anchor\":{\"type\":\"string\",\"value\":\"<h1>\"},\"content\":\"<h1 id=\\\"top\\\">\"}],\"redesignRequested\":false,\"maxEdits\":3}\n```"
	set, err := ParsePatchSet(raw)
	tester.NoErr(t, err)
	tester.Eq(t, len(set.Patches), 1)
	tester.Eq(t, set.Patches[0].Op, patch.OpReplaceBlock)
	tester.Eq(t, set.Patches[0].Anchor.Type, patch.AnchorString)
	tester.Eq(t, set.MaxEdits, 3)
}

func TestParsePatchSetBareObject(t *testing.T) {
	raw := `The plan follows. {"patches":[{"op":"DELETE_BLOCK","anchor":{"type":"REGEX","value":"<footer>.*?</footer>"}}]} Done.`
	set, err := ParsePatchSet(raw)
	tester.NoErr(t, err)
	tester.Eq(t, len(set.Patches), 1)
	tester.Eq(t, set.Patches[0].Anchor.Type, patch.AnchorRegex)
}

func TestParsePatchSetRedesignFlagOnly(t *testing.T) {
	set, err := ParsePatchSet(`{"patches":[],"redesignRequested":true}`)
	tester.NoErr(t, err)
	tester.True(t, set.RedesignRequested)
}

func TestParsePatchSetMalformed(t *testing.T) {
	_, err := ParsePatchSet("no json here")
	tester.True(t, errors.Is(err, ErrMalformed))
}

func TestBundleHTMLSelection(t *testing.T) {
	b := Bundle{"about.html": "<html>about</html>", "zz.html": "<html>z</html>"}
	tester.Eq(t, b.HTML(), "<html>about</html>")
	b["index.html"] = "<html>index</html>"
	tester.Eq(t, b.HTML(), "<html>index</html>")
}
