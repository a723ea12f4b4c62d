package phraseindex

import (
	"math"
	"testing"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

func testEntries() []domain.PhraseEntry {
	return []domain.PhraseEntry{
		{Bad: "hand phone", Good: "cell phone", Context: "mobile device"},
		{Bad: "phone case", Good: "phone cover"},
		{Bad: "pocket ball", Good: "pool"},
	}
}

func TestBuildRejectsEmptyEntries(t *testing.T) {
	_, err := Build(nil, BuildOptions{})
	if !domain.IsKind(err, domain.ErrIndexBuild) {
		t.Fatalf("expected ErrIndexBuild, got %v", err)
	}
}

func TestBuildRejectsFullyPrunedVocabulary(t *testing.T) {
	_, err := Build([]domain.PhraseEntry{{Bad: "hand", Good: "cell"}}, BuildOptions{MaxDF: 0.5})
	if !domain.IsKind(err, domain.ErrIndexBuild) {
		t.Fatalf("expected ErrIndexBuild, got %v", err)
	}
}

func TestBuildVocabularyCountsNGrams(t *testing.T) {
	entries := []domain.PhraseEntry{
		{Bad: "my hand", Good: "x"},
		{Bad: "my bag", Good: "y"},
		{Bad: "my car", Good: "z"},
	}
	idx, err := Build(entries, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := idx.Stats().Vocabulary; got != 7 {
		t.Fatalf("expected 7 n-grams, got %d", got)
	}

	pruned, err := Build(entries, BuildOptions{MaxDF: 0.5})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := pruned.Stats().Vocabulary; got != 6 {
		t.Fatalf("expected shared unigram to be pruned, got %d terms", got)
	}
}

func TestSimilarityExactMatchScoresOne(t *testing.T) {
	idx, err := Build(testEntries(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	scored := idx.Similarity("I want to buy a hand phone")
	if len(scored) != 3 {
		t.Fatalf("expected score per document, got %d", len(scored))
	}
	if scored[0].Doc != 0 || math.Abs(scored[0].Score-1) > 1e-9 {
		t.Fatalf("expected doc 0 with score 1, got %+v", scored[0])
	}
	if scored[1].Doc != 1 || scored[1].Score <= 0 || scored[1].Score >= 0.22 {
		t.Fatalf("expected weak partial match for doc 1, got %+v", scored[1])
	}
	if scored[2].Score != 0 {
		t.Fatalf("expected unrelated doc to score 0, got %+v", scored[2])
	}
}

func TestSimilaritySelfMatchNeverExceedsOne(t *testing.T) {
	idx, err := Build([]domain.PhraseEntry{
		{Bad: "alpha beta gamma delta epsilon", Good: "x"},
		{Bad: "alpha zeta", Good: "y"},
	}, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for range 50 {
		top := idx.Similarity("alpha beta gamma delta epsilon")[0]
		if top.Doc != 0 || top.Score > 1 || top.Score < 1-1e-9 {
			t.Fatalf("expected doc 0 with score in (1-1e-9, 1], got %+v", top)
		}
	}
}

func TestSimilarityTiesKeepDocumentOrder(t *testing.T) {
	idx, err := Build(testEntries(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	scored := idx.Similarity("completely unknown words")
	for i, s := range scored {
		if s.Doc != i || s.Score != 0 {
			t.Fatalf("position %d: expected doc %d with zero score, got %+v", i, i, s)
		}
	}
}

func TestSimilarityWithContextUsesContextTerms(t *testing.T) {
	idx, err := Build(testEntries(), BuildOptions{WithContext: true})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !idx.Stats().WithContext {
		t.Fatalf("expected stats to report context indexing")
	}
	scored := idx.Similarity("mobile device")
	if scored[0].Doc != 0 || scored[0].Score <= 0 {
		t.Fatalf("expected context match on doc 0, got %+v", scored[0])
	}
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	if h.Load() != nil {
		t.Fatalf("expected empty holder")
	}
	idx, err := Build(testEntries(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if prev := h.Swap(idx); prev != nil {
		t.Fatalf("expected no previous index")
	}
	if h.Load() != idx {
		t.Fatalf("expected swapped index to be current")
	}
	if got := h.Load().Stats(); !got.Loaded || got.Entries != 3 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}
