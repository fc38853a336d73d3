// Package segmenter splits extracted document text into sentence-level
// translation units. Line breaks are hard boundaries so structurally
// distinct lines (headings, list items, table cells) never merge into one
// sentence; within a line, sentences end at terminal punctuation followed
// by whitespace or end of line.
package segmenter

import (
	"regexp"
	"strings"
)

// boundaryRe matches a sentence boundary: one or more terminal punctuation
// marks (so "..." and "?!" count as a single boundary) followed by
// whitespace or end of line.
var boundaryRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// Segment splits text into an ordered sequence of translation units.
// It is pure and deterministic and always returns at least one element:
// for input with no sentence boundary the single unit is the whole trimmed
// text (possibly empty for blank input).
//
// Abbreviations ("Mr.", "U.S.") and decimal numbers are not special-cased;
// sentences may split at those points.
func Segment(text string) []string {
	trimmed := strings.TrimSpace(text)

	var units []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		units = append(units, splitLine(line)...)
	}

	if len(units) == 0 {
		return []string{trimmed}
	}
	return units
}

// splitLine splits a single non-empty line at sentence boundaries. When the
// line contains no boundary it is returned whole.
func splitLine(line string) []string {
	matches := boundaryRe.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return []string{line}
	}

	var sentences []string
	prev := 0
	for _, m := range matches {
		s := strings.TrimSpace(line[prev:m[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		prev = m[1]
	}
	if rest := strings.TrimSpace(line[prev:]); rest != "" {
		sentences = append(sentences, rest)
	}

	if len(sentences) == 0 {
		return []string{line}
	}
	return sentences
}
