// Package textsim provides the string comparison primitives used by duplicate
// detection: normalization, Levenshtein distance and a normalized similarity.
package textsim

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lower maps s to lower case using Unicode rules.
func Lower(s string) string {
	// A Caser carries state and is not safe for concurrent use, so build one per call.
	return cases.Lower(language.Und).String(s)
}

// Normalize lowercases s, trims it and collapses internal whitespace runs to
// a single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(Lower(s)), " ")
}

// Levenshtein returns the edit distance between a and b counted in runes.
// Insertions, deletions and substitutions each cost 1.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	// rb is the shorter string; rows are sized to it.
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity returns 1 - distance/maxLength. Identical strings score 1.0 and
// a comparison against an empty string scores 0.0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}
