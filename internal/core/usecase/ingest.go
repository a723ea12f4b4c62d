package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/ports"
)

var knowledgeBaseExtensions = map[string]struct{}{
	".csv":  {},
	".xlsx": {},
}

// UploadPhrasesUseCase stores an uploaded knowledge-base file and asks the
// worker to import it.
type UploadPhrasesUseCase struct {
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadPhrasesUseCase(storage ports.ObjectStorage, queue ports.MessageQueue) *UploadPhrasesUseCase {
	return &UploadPhrasesUseCase{
		storage: storage,
		queue:   queue,
	}
}

func (uc *UploadPhrasesUseCase) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := knowledgeBaseExtensions[ext]; !ok {
		return "", domain.NewError(domain.ErrInvalidInput, "upload phrases", fmt.Sprintf("unsupported file type %q", ext))
	}

	storageKey := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return "", fmt.Errorf("save to object storage: %w", err)
	}
	if err := uc.queue.PublishImportRequested(ctx, storageKey); err != nil {
		return "", fmt.Errorf("publish import event: %w", err)
	}
	return storageKey, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "phrases.csv"
	}
	return base
}
