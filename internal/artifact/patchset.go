package artifact

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/patch"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n(.*?)```")

// ParsePatchSet extracts a patch plan from raw generator output. A fenced
// json block is preferred; otherwise the first balanced top-level object is
// tried. Anchor and op spellings are normalized so minor wire sloppiness
// does not abort a modify flow.
func ParsePatchSet(raw string) (patch.Set, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return patch.Set{}, ErrMalformed
	}

	candidates := make([]string, 0, 2)
	if m := fencedJSONRe.FindStringSubmatch(raw); len(m) == 2 {
		candidates = append(candidates, m[1])
	}
	if obj := firstJSONObject(raw); obj != "" {
		candidates = append(candidates, obj)
	}

	for _, c := range candidates {
		var set patch.Set
		if err := json.Unmarshal([]byte(c), &set); err != nil {
			continue
		}
		if len(set.Patches) == 0 && !set.RedesignRequested {
			continue
		}
		normalize(&set)
		return set, nil
	}
	return patch.Set{}, ErrMalformed
}

// firstJSONObject returns the first balanced {...} span, brace counting
// outside of string literals.
func firstJSONObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}

func normalize(set *patch.Set) {
	for i := range set.Patches {
		p := &set.Patches[i]
		p.Op = patch.Op(strings.ToUpper(strings.TrimSpace(string(p.Op))))
		p.Anchor.Type = patch.AnchorType(strings.ToUpper(strings.TrimSpace(string(p.Anchor.Type))))
		if p.Anchor.Type == "" {
			p.Anchor.Type = patch.AnchorString
		}
	}
}
