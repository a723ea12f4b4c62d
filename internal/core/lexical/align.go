package lexical

import "strings"

const DefaultMaxNGram = 4

// Span is an inclusive token range of the canonical bad phrase together
// with the surface text that was found in the user's wording.
type Span struct {
	Start int
	End   int
	Text  string
}

// Len is the number of tokens covered by the span.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

// Locate finds the part of badPhrase that the user actually wrote. It tries
// the whole phrase first and then its n-grams, longest first and left to
// right within one length. ok is false when nothing can be located; callers
// must skip annotation instead of inventing a span.
func Locate(badPhrase, sourceText string, maxN int) (Span, bool) {
	if maxN <= 0 {
		maxN = DefaultMaxNGram
	}
	bad := Normalize(badPhrase)
	source := strings.ToLower(Normalize(sourceText))
	if bad == "" || source == "" {
		return Span{}, false
	}

	tokens := Tokenize(bad)
	if ContainsPhrase(source, strings.ToLower(bad)) {
		end := len(tokens) - 1
		if end < 0 {
			end = 0
		}
		return Span{Start: 0, End: end, Text: bad}, true
	}

	for n := min(maxN, len(tokens)); n >= 1; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			if ContainsPhrase(source, gram) {
				return Span{Start: i, End: i + n - 1, Text: gram}, true
			}
		}
	}
	return Span{}, false
}
