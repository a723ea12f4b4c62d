package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/ports"
)

// ImportPhrasesUseCase turns a stored knowledge-base file into the current
// phrase table and triggers an index reload.
type ImportPhrasesUseCase struct {
	storage ports.ObjectStorage
	parser  ports.PhraseParser
	repo    ports.PhraseRepository
	queue   ports.MessageQueue
}

func NewImportPhrasesUseCase(
	storage ports.ObjectStorage,
	parser ports.PhraseParser,
	repo ports.PhraseRepository,
	queue ports.MessageQueue,
) *ImportPhrasesUseCase {
	return &ImportPhrasesUseCase{
		storage: storage,
		parser:  parser,
		repo:    repo,
		queue:   queue,
	}
}

func (uc *ImportPhrasesUseCase) ImportByKey(ctx context.Context, key string) error {
	entries, err := uc.parse(ctx, key)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return domain.NewError(domain.ErrInvalidInput, "import phrases", "file has no usable rows")
	}

	if err := uc.repo.ReplaceAll(ctx, entries); err != nil {
		return fmt.Errorf("replace phrase table: %w", err)
	}
	if err := uc.queue.PublishIndexReload(ctx); err != nil {
		return fmt.Errorf("publish reload event: %w", err)
	}

	slog.Info("phrases_imported", "key", key, "entries", len(entries))
	return nil
}

func (uc *ImportPhrasesUseCase) parse(ctx context.Context, key string) ([]domain.PhraseEntry, error) {
	rc, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPhraseSourceNotFound, "open stored file", err)
	}
	defer rc.Close()

	entries, err := uc.parser.Parse(ctx, key, rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return entries, nil
}
