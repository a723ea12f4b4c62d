package ports

import (
	"context"
	"io"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

// PhraseSource yields the normalized, de-duplicated knowledge base.
type PhraseSource interface {
	LoadPhrases(ctx context.Context) ([]domain.PhraseEntry, error)
}

// PhraseRepository persists the phrase table.
type PhraseRepository interface {
	PhraseSource
	ReplaceAll(ctx context.Context, entries []domain.PhraseEntry) error
	Count(ctx context.Context) (int, error)
}

// PhraseParser decodes an uploaded knowledge-base file.
type PhraseParser interface {
	Parse(ctx context.Context, filename string, body io.Reader) ([]domain.PhraseEntry, error)
}

// ObjectStorage stores uploaded knowledge-base files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes import and reload events.
type MessageQueue interface {
	PublishImportRequested(ctx context.Context, key string) error
	SubscribeImportRequested(ctx context.Context, handler func(context.Context, string) error) error
	PublishIndexReload(ctx context.Context) error
	SubscribeIndexReload(ctx context.Context, handler func(context.Context) error) error
}

// HintRetriever queries the in-memory phrase index.
type HintRetriever interface {
	Retrieve(query string, topK int, minSim float64) []domain.Hint
	Stats() domain.IndexStats
}

// CandidateGenerator produces N raw rewrites of the user text, in generation order.
type CandidateGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) ([]string, error)
	ModelName() string
}
