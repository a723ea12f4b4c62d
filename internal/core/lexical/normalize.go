// Package lexical holds the text primitives shared by retrieval, alignment
// and formatting: normalization, word tokenization, whole-phrase matching,
// bad-span location and replacement extraction.
package lexical

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC and collapses every whitespace run to one space.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	return CollapseSpace(norm.NFKC.String(text))
}

// CollapseSpace collapses whitespace runs and trims both ends without
// touching the Unicode form.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_'-]*`)

// Words returns the word tokens of text as written. Trailing apostrophes
// and hyphens are not part of a token.
func Words(text string) []string {
	raw := wordPattern.FindAllString(text, -1)
	out := raw[:0]
	for _, w := range raw {
		w = strings.TrimRight(w, "'-")
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Tokenize normalizes text and returns its lowercase word tokens.
func Tokenize(text string) []string {
	words := Words(Normalize(text))
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
