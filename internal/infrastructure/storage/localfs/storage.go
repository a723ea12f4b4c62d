package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

// Storage keeps uploaded knowledge-base files under one directory.
type Storage struct {
	basePath string
	maxBytes int64
}

func New(basePath string, maxBytes int64) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/uploads"
	}
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath, maxBytes: maxBytes}, nil
}

func (s *Storage) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", domain.NewError(domain.ErrInvalidInput, "storage key", fmt.Sprintf("invalid key %q", key))
	}
	return filepath.Join(s.basePath, key), nil
}

// Save writes via a temp file and renames it into place, so a reader never
// sees a partial upload.
func (s *Storage) Save(_ context.Context, key string, data io.Reader) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(data, s.maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if n > s.maxBytes {
		return domain.NewError(domain.ErrInvalidInput, "save upload", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move file into place: %w", err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrPhraseSourceNotFound, "open upload", err)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}
