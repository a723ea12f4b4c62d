package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/friendsfixer/internal/core/phraseindex"
	"github.com/kirillkom/friendsfixer/internal/core/ports"
)

// IndexService rebuilds the phrase index from a source and publishes it.
type IndexService struct {
	source ports.PhraseSource
	holder *phraseindex.Holder
	maxDF  float64
}

func NewIndexService(source ports.PhraseSource, holder *phraseindex.Holder, maxDF float64) *IndexService {
	return &IndexService{source: source, holder: holder, maxDF: maxDF}
}

// Rebuild loads every phrase and swaps a fresh index in. On failure the
// current index stays in place.
func (s *IndexService) Rebuild(ctx context.Context) error {
	entries, err := s.source.LoadPhrases(ctx)
	if err != nil {
		return fmt.Errorf("load phrases: %w", err)
	}

	withContext := false
	for _, e := range entries {
		if e.Context != "" {
			withContext = true
			break
		}
	}

	idx, err := phraseindex.Build(entries, phraseindex.BuildOptions{WithContext: withContext, MaxDF: s.maxDF})
	if err != nil {
		return err
	}
	prev := s.holder.Swap(idx)

	stats := idx.Stats()
	slog.Info("index_rebuilt",
		"entries", stats.Entries,
		"vocabulary", stats.Vocabulary,
		"with_context", stats.WithContext,
		"replaced", prev != nil,
	)
	return nil
}
