package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("scrape status %d", res.Code)
	}
	return res.Body.String()
}

func TestHTTPMiddlewareCountsNormalizedPaths(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/correct", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/123", nil))

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `friendsfixer_http_requests_total{method="POST",path="/v1/correct",service="api",status="418"} 1`) {
		t.Fatalf("missing correct request sample:\n%s", body)
	}
	if !strings.Contains(body, `path="other"`) {
		t.Fatalf("expected unknown paths to collapse into other")
	}
}

func TestRecordCorrectionAndBreaker(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	m.RecordCorrection("api", "noted_aligned", "echo", 0, true, 20*time.Millisecond)
	m.RecordBreakerState("api", "ollama.chat", "open")
	m.SetIndexEntries(12)

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`friendsfixer_correction_total{knote="noted_aligned",model="echo",service="api"} 1`,
		`friendsfixer_retrieval_no_hints_total{endpoint="correct",service="api"} 1`,
		`friendsfixer_correction_post_edits_total{service="api"} 1`,
		`friendsfixer_resilience_breaker_open{operation="ollama.chat",service="api"} 1`,
		`friendsfixer_index_entries{service="api"} 12`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in:\n%s", want, body)
		}
	}
}

func TestWorkerMetricsRecordsStatus(t *testing.T) {
	m := NewWorkerMetrics("worker")
	m.StartImport()
	m.FinishImport("worker", time.Second, errors.New("boom"))

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `friendsfixer_worker_phrase_import_total{service="worker",status="error"} 1`) {
		t.Fatalf("missing error sample:\n%s", body)
	}
	if !strings.Contains(body, `friendsfixer_worker_phrase_import_in_flight{service="worker"} 0`) {
		t.Fatalf("in-flight gauge not released:\n%s", body)
	}
}
