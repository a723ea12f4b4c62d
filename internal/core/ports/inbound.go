package ports

import (
	"context"
	"io"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

// Corrector is the inbound contract for the full correction pipeline.
type Corrector interface {
	Correct(ctx context.Context, userText string) (*domain.CorrectionResult, error)
}

// HintLookup exposes raw retrieval without generation.
type HintLookup interface {
	Lookup(ctx context.Context, query string, topK int, minSim float64) ([]domain.Hint, error)
	Stats(ctx context.Context) domain.IndexStats
}

// PhraseUploader accepts a knowledge-base file and schedules its import.
type PhraseUploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (string, error)
}

// PhraseImporter is the inbound contract for asynchronous knowledge-base import.
type PhraseImporter interface {
	ImportByKey(ctx context.Context, key string) error
}

type IndexReloader interface {
	Rebuild(ctx context.Context) error
}
