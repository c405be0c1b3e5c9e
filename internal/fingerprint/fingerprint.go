// Package fingerprint computes coarse structural signatures over generated
// HTML/CSS. Signatures are lossy digests meant for drift smell tests, not
// real diffs: comparison is prefix-based and therefore not symmetric.
package fingerprint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fingerprint is the persisted triple of signatures for a project's current
// artifact.
type Fingerprint struct {
	DOMSignature    string `json:"domSignature"`
	CSSSignature    string `json:"cssSignature"`
	LayoutSignature string `json:"layoutSignature"`
}

const (
	maxTags      = 50
	maxColors    = 10
	maxFonts     = 3
	divRoundDown = 5
)

var (
	bodyRe  = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
	tagRe   = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9-]*)`)
	colorRe = regexp.MustCompile(`#[0-9a-fA-F]{3,8}|rgba?\([^)]*\)|hsla?\([^)]*\)`)
	fontRe  = regexp.MustCompile(`(?i)font-family\s*:\s*([^;{}]+)`)
)

// Compute derives all three signatures from a single HTML document
// (inline CSS included).
func Compute(html string) Fingerprint {
	return Fingerprint{
		DOMSignature:    DOMSignature(html),
		CSSSignature:    CSSSignature(html),
		LayoutSignature: LayoutSignature(html),
	}
}

// DOMSignature hashes the sequence of tag names inside <body> (whole document
// when no body is present), bounded at the first 50 tags.
func DOMSignature(html string) string {
	scope := html
	if m := bodyRe.FindStringSubmatch(html); len(m) == 2 {
		scope = m[1]
	}
	matches := tagRe.FindAllStringSubmatch(scope, maxTags)
	if len(matches) == 0 {
		return ""
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.ToLower(m[1]))
	}
	return hash36(strings.Join(names, ","))
}

// CSSSignature hashes up to 10 color tokens and 3 font-family declarations
// found anywhere in the given text.
func CSSSignature(text string) string {
	colors := colorRe.FindAllString(text, maxColors)
	fonts := fontRe.FindAllStringSubmatch(text, maxFonts)
	if len(colors) == 0 && len(fonts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(colors)+len(fonts))
	for _, c := range colors {
		parts = append(parts, strings.ToLower(c))
	}
	for _, f := range fonts {
		parts = append(parts, strings.ToLower(strings.TrimSpace(f[1])))
	}
	return hash36(strings.Join(parts, ","))
}

// LayoutSignature captures the page's gross shape: nav/hero/footer presence,
// section count, and div count rounded down to the nearest multiple of 5 so
// incidental wrapper divs do not register as layout drift.
func LayoutSignature(html string) string {
	lower := strings.ToLower(html)
	hasNav := strings.Contains(lower, "<nav") || strings.Contains(lower, "class=\"nav") || strings.Contains(lower, "navbar")
	hasHero := strings.Contains(lower, "hero")
	hasFooter := strings.Contains(lower, "<footer") || strings.Contains(lower, "footer")
	sections := strings.Count(lower, "<section")
	divs := strings.Count(lower, "<div") / divRoundDown * divRoundDown
	return fmt.Sprintf("nav=%t;hero=%t;footer=%t;sections=%d;divs=%d", hasNav, hasHero, hasFooter, sections, divs)
}

// hash36 rolls a 31-multiplier polynomial hash wrapped to signed 32 bits and
// renders the magnitude in base 36.
func hash36(s string) string {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
