package httpadapter

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/friendsfixer/internal/config"
	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/observability/metrics"
)

func newMultipartRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte(content))
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/phrases/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCorrectReturnsResult(t *testing.T) {
	corrector := &correctorFake{result: &domain.CorrectionResult{
		FinalText:      "K-note: 'hand phone' is Konglish → say 'cell phone'.\nAnyway, nice!",
		RawText:        "K-note: 'hand phone' is Konglish → say 'cell phone'.\nAnyway, nice!",
		HintsUsed:      []domain.Hint{{Konglish: "hand phone", Natural: "cell phone", Sim: 1}},
		KNote:          domain.KNoteAligned,
		Model:          "echo",
		ProcessingTime: 12 * time.Millisecond,
	}}
	m := metrics.NewHTTPServerMetrics(serviceName)
	handler := NewRouter(config.Config{}, corrector, &hintsFake{}, nil, WithMetrics(m)).Handler()

	res := postCorrect(t, handler, `{"text":"I bought a new hand phone"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if corrector.got != "I bought a new hand phone" {
		t.Fatalf("unexpected text passed to corrector: %q", corrector.got)
	}

	var resp struct {
		FinalText    string        `json:"final_text"`
		KNote        string        `json:"k_note"`
		Model        string        `json:"model_used"`
		HintsUsed    []domain.Hint `json:"hints_used"`
		ProcessingMS int64         `json:"processing_ms"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.KNote != "noted_aligned" || resp.Model != "echo" || resp.ProcessingMS != 12 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.HintsUsed) != 1 || resp.HintsUsed[0].Natural != "cell phone" {
		t.Fatalf("unexpected hints: %+v", resp.HintsUsed)
	}

	scrape := httptest.NewRecorder()
	handler.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(scrape.Body.String(), `friendsfixer_correction_total{knote="noted_aligned",model="echo",service="friendsfixer-api"} 1`) {
		t.Fatalf("correction not recorded in metrics")
	}
}

func TestCorrectRejectsBadPayloads(t *testing.T) {
	handler := newTestHandler(config.Config{})
	for name, body := range map[string]string{
		"not json":      "{",
		"blank":         `{"text":"   "}`,
		"unknown field": `{"text":"hi","lang":"en"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if res := postCorrect(t, handler, body); res.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", res.Code)
			}
		})
	}

	long := `{"text":"` + strings.Repeat("a", maxCorrectTextRune+1) + `"}`
	if res := postCorrect(t, handler, long); res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
}

func TestHintsUsesDefaultsAndOverrides(t *testing.T) {
	hints := &hintsFake{hints: []domain.Hint{{Konglish: "eye shopping", Natural: "window shopping", Sim: 0.8}}}
	handler := NewRouter(config.Config{RAGTopK: 4, RAGMinSim: 0.22}, &correctorFake{}, hints, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/hints?q=eye+shopping", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if hints.gotTopK != 4 || hints.gotMinSim != 0.22 {
		t.Fatalf("expected configured defaults, got top_k=%d min_sim=%v", hints.gotTopK, hints.gotMinSim)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/hints?q=eye&top_k=2&min_sim=0.5", nil))
	if hints.gotTopK != 2 || hints.gotMinSim != 0.5 {
		t.Fatalf("expected overrides, got top_k=%d min_sim=%v", hints.gotTopK, hints.gotMinSim)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/hints?q=eye&top_k=zero", nil))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid top_k, got %d", res.Code)
	}

	for _, raw := range []string{"0", "-0.1", "1.5"} {
		hints.gotMinSim = -1
		res = httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/hints?q=eye&min_sim="+raw, nil))
		if res.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for min_sim=%s, got %d", raw, res.Code)
		}
		if hints.gotMinSim != -1 {
			t.Fatalf("min_sim=%s must not reach the lookup", raw)
		}
	}
}

func TestStatsAndHealth(t *testing.T) {
	hints := &hintsFake{stats: domain.IndexStats{Entries: 0, Loaded: false}}
	handler := NewRouter(config.Config{}, &correctorFake{}, hints, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"degraded"`) {
		t.Fatalf("expected degraded health, got %d %s", res.Code, res.Body.String())
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	var stats domain.IndexStats
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Loaded {
		t.Fatalf("expected unloaded stats, got %+v", stats)
	}
}

func TestImportAcceptsMultipartUpload(t *testing.T) {
	uploader := &uploaderFake{key: "abc_kb.csv"}
	handler := NewRouter(config.Config{}, &correctorFake{}, &hintsFake{}, uploader).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, newMultipartRequest(t, "kb.csv", "bad,good\nhand phone,cell phone\n"))
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if uploader.gotFilename != "kb.csv" || !strings.Contains(uploader.gotBody, "hand phone") {
		t.Fatalf("unexpected upload: %q %q", uploader.gotFilename, uploader.gotBody)
	}
	if !strings.Contains(res.Body.String(), "abc_kb.csv") {
		t.Fatalf("expected key in response, got %s", res.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(config.Config{})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/correct", nil))
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
