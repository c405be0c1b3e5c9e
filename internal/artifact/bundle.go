// Package artifact models the generator's output: a bundle of web files plus
// the defensive parsers for the generator's tagged-block wire format. The
// generator is a black box and its output is treated as hostile input:
// parsing never panics, and unparsable output degrades to a stub bundle so
// the quality gates can fail it with a concrete reason.
package artifact

import (
	"fmt"
	"sort"
	"strings"
)

// Bundle maps a relative file name to its full text content. A bundle is
// immutable once produced; edits produce a new bundle.
type Bundle map[string]string

// HTML returns the primary HTML document: index.html when present, otherwise
// the lexicographically first *.html file, otherwise empty.
func (b Bundle) HTML() string {
	if content, ok := b["index.html"]; ok {
		return content
	}
	names := make([]string, 0, len(b))
	for name := range b {
		if strings.HasSuffix(name, ".html") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return b[names[0]]
}

// CSS concatenates all *.css files in name order.
func (b Bundle) CSS() string {
	names := make([]string, 0, len(b))
	for name := range b {
		if strings.HasSuffix(name, ".css") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, b[name])
	}
	return strings.Join(parts, "\n")
}

// Names returns the file names in sorted order.
func (b Bundle) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy.
func (b Bundle) Clone() Bundle {
	out := make(Bundle, len(b))
	for name, content := range b {
		out[name] = content
	}
	return out
}

// Stub synthesizes a minimal HTML bundle naming the failure reason. It is
// deliberately invalid enough for the HTML validity gate to reject with a
// useful message instead of the pipeline crashing on empty input.
func Stub(reason string) Bundle {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "generator returned no usable output"
	}
	return Bundle{
		"index.html": fmt.Sprintf("<div data-generation-failed=\"true\">%s</div>", reason),
	}
}
