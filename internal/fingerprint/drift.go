package fingerprint

import "math"

// Drift estimates how far signature b has moved from signature a on a 0-100
// scale. Equal signatures are 0; a missing side is 100. Otherwise characters
// are compared position by position up to the shorter length and similarity
// is matches over the longer length.
//
// Drift(a, b) and Drift(b, a) can differ: the comparison is prefix-based.
// That asymmetry is accepted; callers always pass (stored, candidate).
func Drift(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" || b == "" {
		return 100
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	similarity := float64(matches) / float64(longest)
	return int(math.Round((1 - similarity) * 100))
}
