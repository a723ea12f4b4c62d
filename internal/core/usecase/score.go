package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/lexical"
)

const (
	naturalReward   = 1.0
	konglishPenalty = 2.0
	lengthHorizon   = 500.0
)

// Score rewards hint natural phrases, penalizes hint konglish phrases and
// adds a small bonus for shorter candidates.
func Score(candidate string, hints []domain.Hint) float64 {
	var score float64
	for _, h := range hints {
		if good := strings.TrimSpace(h.Natural); good != "" && lexical.ContainsPhrase(candidate, good) {
			score += naturalReward
		}
		if bad := strings.TrimSpace(h.Konglish); bad != "" && lexical.ContainsPhrase(candidate, bad) {
			score -= konglishPenalty
		}
	}
	return score + max(0, 1-float64(utf8.RuneCountInString(candidate))/lengthHorizon)
}

// SelectBest scores every candidate and returns the highest one. Ties go to
// the earliest candidate. ok is false when texts is empty.
func SelectBest(texts []string, hints []domain.Hint) (best domain.Candidate, scored []domain.Candidate, ok bool) {
	scored = make([]domain.Candidate, 0, len(texts))
	for i, text := range texts {
		c := domain.Candidate{Text: text, Score: Score(text, hints)}
		scored = append(scored, c)
		if i == 0 || c.Score > best.Score {
			best = c
		}
	}
	return best, scored, len(texts) > 0
}
