// Package similarity scores how close two strings are on a [0,1] scale.
// The score drives fuzzy translation-memory retrieval and glossary term
// detection, so both sides are normalized (case, punctuation, Unicode form)
// before the edit distance is computed.
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stripPunct is the fixed punctuation set removed during normalization.
const stripPunct = `.,;:!?'"()[]{}«»„“”‘’…-—`

// Normalize lowercases s, applies Unicode NFC, removes the fixed punctuation
// set and collapses runs of whitespace into single spaces. Two strings that
// differ only in case or punctuation normalize to the same value.
func Normalize(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(stripPunct, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.FieldsFunc(b.String(), unicode.IsSpace), " ")
}

// Score returns the similarity of a and b in [0,1], where 1 means the
// normalized forms are identical. The score is 1 - d/maxLen with d the
// Levenshtein distance over runes; two strings that both normalize to ""
// score 1.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0
	}

	ra, rb := []rune(na), []rune(nb)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes the edit distance between two rune slices with unit
// insert/delete/substitute costs, using the two-row DP formulation.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			min := prev[j]
			if prev[j-1] < min {
				min = prev[j-1]
			}
			if curr[j-1] < min {
				min = curr[j-1]
			}
			curr[j] = min + 1
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
