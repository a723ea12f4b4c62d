package lexical

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// A phrase match must not touch a word character on either side, so
// "phone" matches in "my phone." but not in "phones" or "smartphone".

func phrasePattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
}

func boundedAt(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// findAll returns byte ranges of non-overlapping whole-phrase matches,
// scanning left to right.
func findAll(text string, re *regexp.Regexp, limit int) [][2]int {
	var out [][2]int
	pos := 0
	for pos <= len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && boundedAt(text, start, end) {
			out = append(out, [2]int{start, end})
			if limit > 0 && len(out) >= limit {
				break
			}
			pos = end
			continue
		}
		if start >= len(text) {
			break
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}

// ContainsPhrase reports a case-insensitive whole-phrase match of phrase
// inside text.
func ContainsPhrase(text, phrase string) bool {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" || text == "" {
		return false
	}
	return len(findAll(text, phrasePattern(phrase), 1)) > 0
}

// ReplacePhrase substitutes every case-insensitive whole-phrase match of
// phrase with repl. repl is inserted literally.
func ReplacePhrase(text, phrase, repl string) string {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" || text == "" {
		return text
	}
	matches := findAll(text, phrasePattern(phrase), 0)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range matches {
		b.WriteString(text[prev:m[0]])
		b.WriteString(repl)
		prev = m[1]
	}
	b.WriteString(text[prev:])
	return b.String()
}
