package artifact

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformed reports generator output that could not be parsed as a bundle
// or a patch set.
var ErrMalformed = errors.New("artifact: malformed generator output")

var (
	// ```file:index.html\n ... ```
	fencedFileRe = regexp.MustCompile("(?s)```file:([^\\s`]+)\\s*\n(.*?)```")
	// <!-- FILE: index.html --> ... <!-- END FILE -->
	markerFileRe = regexp.MustCompile(`(?s)<!--\s*FILE:\s*([^\s]+)\s*-->(.*?)<!--\s*END FILE\s*-->`)
)

// ParseBundle extracts a file bundle from raw generator output.
//
// Recognized forms, tried in order: fenced ```file:NAME blocks, HTML comment
// FILE markers, and finally the raw text kept verbatim as index.html so the
// gates can judge it. Only empty output is malformed; the wire format is an
// external contract and is never assumed well-formed.
func ParseBundle(raw string) (Bundle, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}

	bundle := make(Bundle)
	for _, m := range fencedFileRe.FindAllStringSubmatch(raw, -1) {
		name := cleanName(m[1])
		if name == "" {
			continue
		}
		bundle[name] = strings.TrimSpace(m[2])
	}
	if len(bundle) > 0 {
		return bundle, nil
	}

	for _, m := range markerFileRe.FindAllStringSubmatch(raw, -1) {
		name := cleanName(m[1])
		if name == "" {
			continue
		}
		bundle[name] = strings.TrimSpace(m[2])
	}
	if len(bundle) > 0 {
		return bundle, nil
	}

	// Anything non-empty that matched no wire form is kept verbatim so the
	// validation gates can say what is wrong with it. Swallowing it here
	// would turn a plan document or prose dump into a generic parse error.
	return Bundle{"index.html": raw}, nil
}

// cleanName normalizes a wire file name to a safe relative path. Anything
// that escapes the project directory is dropped.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, "\"'`")
	if name == "" || strings.Contains(name, "..") {
		return ""
	}
	name = strings.TrimPrefix(name, "./")
	if strings.HasPrefix(name, "/") {
		return ""
	}
	return name
}
