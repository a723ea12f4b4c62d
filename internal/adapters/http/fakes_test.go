package httpadapter

import (
	"context"
	"io"
	"net/http"

	"github.com/kirillkom/friendsfixer/internal/config"
	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

type correctorFake struct {
	result *domain.CorrectionResult
	err    error
	got    string
}

func (f *correctorFake) Correct(_ context.Context, text string) (*domain.CorrectionResult, error) {
	f.got = text
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type hintsFake struct {
	hints     []domain.Hint
	err       error
	stats     domain.IndexStats
	gotTopK   int
	gotMinSim float64
}

func (f *hintsFake) Lookup(_ context.Context, _ string, topK int, minSim float64) ([]domain.Hint, error) {
	f.gotTopK, f.gotMinSim = topK, minSim
	if f.err != nil {
		return nil, f.err
	}
	return f.hints, nil
}

func (f *hintsFake) Stats(context.Context) domain.IndexStats {
	return f.stats
}

type uploaderFake struct {
	key         string
	err         error
	gotFilename string
	gotBody     string
}

func (f *uploaderFake) Upload(_ context.Context, filename string, body io.Reader) (string, error) {
	f.gotFilename = filename
	raw, _ := io.ReadAll(body)
	f.gotBody = string(raw)
	if f.err != nil {
		return "", f.err
	}
	return f.key, nil
}

func newTestHandler(cfg config.Config) http.Handler {
	hints := &hintsFake{stats: domain.IndexStats{Entries: 2, Loaded: true}}
	return NewRouter(cfg, &correctorFake{}, hints, &uploaderFake{key: "k"}).Handler()
}
