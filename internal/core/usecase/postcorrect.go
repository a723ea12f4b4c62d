package usecase

import (
	"regexp"
	"strings"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/lexical"
)

var kNoteLinePattern = regexp.MustCompile(`(?i)\bis\s+konglish\b`)

// PostCorrector replaces high-confidence konglish phrases left in a
// candidate with their natural counterparts.
type PostCorrector struct {
	minSim float64
}

func NewPostCorrector(cfg CorrectionConfig) *PostCorrector {
	return &PostCorrector{minSim: cfg.PostMinSim}
}

// Apply substitutes hints in order; later hints see earlier rewrites.
func (p *PostCorrector) Apply(text string, hints []domain.Hint) string {
	fixed := text
	for _, h := range hints {
		if h.Sim < p.minSim || h.Konglish == "" || h.Natural == "" {
			continue
		}
		fixed = lexical.ReplacePhrase(fixed, h.Konglish, h.Natural)
	}
	return fixed
}

// ApplyProtected leaves a leading K-note line byte-identical and corrects
// only the lines after it.
func (p *PostCorrector) ApplyProtected(text string, hints []domain.Hint) string {
	head, rest, found := strings.Cut(text, "\n")
	if !kNoteLinePattern.MatchString(head) {
		return p.Apply(text, hints)
	}
	if !found || strings.TrimSpace(rest) == "" {
		return head
	}
	fixedTail := p.Apply(rest, hints)
	if fixedTail == "" {
		return head
	}
	return head + "\n" + fixedTail
}

// unionHints merges hint lists keyed by (konglish, natural). Keys keep their
// first-seen position and take the last-seen value.
func unionHints(lists ...[]domain.Hint) []domain.Hint {
	type key struct{ bad, good string }
	pos := make(map[key]int)
	out := make([]domain.Hint, 0)
	for _, list := range lists {
		for _, h := range list {
			k := key{h.Konglish, h.Natural}
			if i, ok := pos[k]; ok {
				out[i] = h
				continue
			}
			pos[k] = len(out)
			out = append(out, h)
		}
	}
	return out
}
