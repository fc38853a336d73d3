// Package placeholder shields non-translatable inline content — markup
// tags, code spans, printf-style verbs and templating variables — from the
// machine translation backend by swapping it for numbered tokens before the
// call and swapping it back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var protectedRes = []*regexp.Regexp{
	// fenced code blocks, possibly multi-line
	regexp.MustCompile("(?s)```.*?```"),
	// inline code spans
	regexp.MustCompile("`[^`]+`"),
	// HTML/XML tags
	regexp.MustCompile(`<[^>]+>`),
	// templating variables: {0}, {name}, {{ .Field }}
	regexp.MustCompile(`\{\{?[^{}]*\}?\}`),
	// printf-style verbs: %s, %d, %.2f, %v
	regexp.MustCompile(`%[-+ #0]*[\d.*]*[a-zA-Z]`),
}

var tokenRe = regexp.MustCompile(`\[\[(\d+)\]\]`)

// Protect replaces non-translatable spans of text with [[n]] tokens,
// numbered in order of appearance, and returns the modified text with the
// captured originals for Restore.
func Protect(text string) (string, []string) {
	var captured []string

	for _, re := range protectedRes {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			token := fmt.Sprintf("[[%d]]", len(captured))
			captured = append(captured, match)
			return token
		})
	}

	return text, captured
}

// Restore substitutes [[n]] tokens back with the spans captured by Protect.
// Tokens with out-of-range indices are left untouched; captured spans whose
// token the backend dropped are simply absent from the result.
func Restore(text string, captured []string) string {
	if len(captured) == 0 {
		return text
	}
	return tokenRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := tokenRe.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(captured) {
			return match
		}
		return captured[idx]
	})
}

// Lost reports the captured spans whose tokens no longer appear in text,
// i.e. content the backend dropped during translation.
func Lost(text string, captured []string) []string {
	var lost []string
	for i, span := range captured {
		if !strings.Contains(text, fmt.Sprintf("[[%d]]", i)) {
			lost = append(lost, span)
		}
	}
	return lost
}
