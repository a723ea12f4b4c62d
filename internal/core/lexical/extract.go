package lexical

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const maxReplacementWords = 3

// pairTokens is the shared view every replacement strategy works on.
type pairTokens struct {
	bad        []string
	good       []string
	badContent map[string]struct{}
	goodSeq    map[string]struct{}
	goodOrder  []string
}

func newPairTokens(bad, good string) *pairTokens {
	tb := Tokenize(bad)
	tg := Tokenize(good)
	goodOrder := contentTokens(tg)
	return &pairTokens{
		bad:        tb,
		good:       tg,
		badContent: wordSet(contentTokens(tb)...),
		goodSeq:    wordSet(goodOrder...),
		goodOrder:  goodOrder,
	}
}

// keep is the verb/time/color filter applied to every emitted token.
func (p *pairTokens) keep(t string) bool {
	return has(p.goodSeq, t) && !isProbableVerb(t) && !isTimeOrMeta(t)
}

// replacementStrategy returns a fragment of the good phrase, or false to
// hand over to the next strategy.
type replacementStrategy func(p *pairTokens) ([]string, bool)

var replacementStrategies = []replacementStrategy{
	newWordRun,
	diffInsertion,
	goodContent,
}

// ExtractReplacement derives a short fragment of good that names what
// changed between bad and good. Extraction works on the canonical pair;
// badSpan only records which part of bad was located in the user's text.
func ExtractReplacement(bad, good, badSpan string) (string, bool) {
	p := newPairTokens(bad, good)
	for _, strategy := range replacementStrategies {
		if frag, ok := strategy(p); ok && len(frag) > 0 {
			return strings.Join(capWords(frag), " "), true
		}
	}
	return "", false
}

// newWordRun looks for maximal runs of good-phrase positions whose content
// tokens do not occur in the bad phrase. A lone surviving token borrows an
// adjacent bad-phrase word so "cell" becomes "cell phone".
func newWordRun(p *pairTokens) ([]string, bool) {
	var positions []int
	for i, t := range p.good {
		if !has(p.badContent, t) && has(p.goodSeq, t) {
			positions = append(positions, i)
		}
	}

	for _, run := range groupRuns(positions) {
		var seq []string
		for _, t := range p.good[run[0] : run[1]+1] {
			if p.keep(t) {
				seq = append(seq, t)
			}
		}
		if len(seq) == 0 {
			continue
		}
		if len(seq) == 1 {
			seq = p.widenSingle(seq, run)
		}
		return seq, true
	}
	return nil, false
}

func (p *pairTokens) widenSingle(seq []string, run [2]int) []string {
	tg := p.good
	i0 := run[0]
	for i := run[0]; i <= run[1]; i++ {
		if tg[i] == seq[0] {
			i0 = i
			break
		}
	}

	if i0+1 < len(tg) && has(p.badContent, tg[i0+1]) && !isTimeOrMeta(tg[i0+1]) {
		seq = append(seq, tg[i0+1])
		if i0+2 < len(tg) && p.keep(tg[i0+2]) {
			seq = append(seq, tg[i0+2])
		}
		return seq
	}
	if i0-1 >= 0 && has(p.badContent, tg[i0-1]) && !isTimeOrMeta(tg[i0-1]) {
		return append([]string{tg[i0-1]}, seq...)
	}
	return seq
}

// diffInsertion walks the token edit script and returns the first
// replaced or inserted good-side fragment that survives the filter.
func diffInsertion(p *pairTokens) ([]string, bool) {
	if len(p.good) == 0 {
		return nil, false
	}
	matcher := difflib.NewMatcher(p.bad, p.good)
	for _, op := range matcher.GetOpCodes() {
		if op.Tag != 'r' && op.Tag != 'i' {
			continue
		}
		var frag []string
		for _, t := range p.good[op.J1:op.J2] {
			if p.keep(t) {
				frag = append(frag, t)
			}
		}
		if len(frag) > 0 {
			return frag, true
		}
	}
	return nil, false
}

func goodContent(p *pairTokens) ([]string, bool) {
	var out []string
	for _, t := range p.goodOrder {
		if !isProbableVerb(t) && !isTimeOrMeta(t) {
			out = append(out, t)
		}
	}
	return out, len(out) > 0
}

// groupRuns turns sorted positions into inclusive [start, end] runs of
// consecutive integers.
func groupRuns(positions []int) [][2]int {
	if len(positions) == 0 {
		return nil
	}
	runs := make([][2]int, 0, 4)
	start, prev := positions[0], positions[0]
	for _, x := range positions[1:] {
		if x == prev+1 {
			prev = x
			continue
		}
		runs = append(runs, [2]int{start, prev})
		start, prev = x, x
	}
	return append(runs, [2]int{start, prev})
}

func capWords(words []string) []string {
	if len(words) > maxReplacementWords {
		return words[:maxReplacementWords]
	}
	return words
}

// LimitWords keeps at most n word tokens of s, preserving their case.
// Strings that are already short enough are returned unchanged.
func LimitWords(s string, n int) string {
	words := Words(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}
