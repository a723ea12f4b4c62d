package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/friendsfixer/internal/config"
	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/ports"
	"github.com/kirillkom/friendsfixer/internal/observability/metrics"
)

const (
	serviceName        = "friendsfixer-api"
	maxCorrectBodySize = 64 << 10
	maxCorrectTextRune = 4000
	defaultUploadSize  = 32 << 20
)

type Router struct {
	corrector ports.Corrector
	hints     ports.HintLookup
	uploader  ports.PhraseUploader
	metrics   *metrics.HTTPServerMetrics

	apiKey           string
	topK             int
	minSim           float64
	maxUploadBytes   int64
	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

type Option func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) {
		rt.metrics = m
	}
}

func NewRouter(
	cfg config.Config,
	corrector ports.Corrector,
	hints ports.HintLookup,
	uploader ports.PhraseUploader,
	opts ...Option,
) *Router {
	rt := &Router{
		corrector:        corrector,
		hints:            hints,
		uploader:         uploader,
		apiKey:           cfg.APIKey,
		topK:             cfg.RAGTopK,
		minSim:           cfg.RAGMinSim,
		maxUploadBytes:   cfg.UploadMaxBytes,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIMaxInFlight,
		backpressureWait: time.Duration(cfg.APIBackpressureWaitMS) * time.Millisecond,
	}
	if rt.maxUploadBytes <= 0 {
		rt.maxUploadBytes = defaultUploadSize
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/correct", rt.correct)
	mux.HandleFunc("GET /v1/hints", rt.lookupHints)
	mux.HandleFunc("GET /v1/stats", rt.stats)
	mux.HandleFunc("POST /v1/phrases/import", rt.importPhrases)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = authMiddleware(handler, rt.apiKey)
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	stats := rt.hints.Stats(r.Context())
	status := "ok"
	if !stats.Loaded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "index_entries": stats.Entries})
}

type correctRequest struct {
	Text string `json:"text"`
}

type correctResponse struct {
	*domain.CorrectionResult
	ProcessingMS int64 `json:"processing_ms"`
}

func (rt *Router) correct(w http.ResponseWriter, r *http.Request) {
	var req correctRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCorrectBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len([]rune(req.Text)) > maxCorrectTextRune {
		writeError(w, http.StatusRequestEntityTooLarge, "text is too long")
		return
	}

	result, err := rt.corrector.Correct(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordCorrection(
			serviceName,
			string(result.KNote),
			result.Model,
			len(result.HintsUsed),
			result.FinalText != result.RawText,
			result.ProcessingTime,
		)
	}
	writeJSON(w, http.StatusOK, correctResponse{
		CorrectionResult: result,
		ProcessingMS:     result.ProcessingTime.Milliseconds(),
	})
}

func (rt *Router) lookupHints(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	topK := rt.topK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			writeError(w, http.StatusBadRequest, "top_k must be an integer in [1, 50]")
			return
		}
		topK = n
	}
	minSim := rt.minSim
	if raw := r.URL.Query().Get("min_sim"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		// Zero selects the configured floor downstream, so it is not accepted
		// as an explicit value.
		if err != nil || f <= 0 || f > 1 {
			writeError(w, http.StatusBadRequest, "min_sim must be a number in (0, 1]")
			return
		}
		minSim = f
	}

	hints, err := rt.hints.Lookup(r.Context(), query, topK, minSim)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordHints(serviceName, "hints", len(hints))
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "hints": hints})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	stats := rt.hints.Stats(r.Context())
	if rt.metrics != nil {
		rt.metrics.SetIndexEntries(stats.Entries)
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) importPhrases(w http.ResponseWriter, r *http.Request) {
	if rt.uploader == nil {
		writeDomainError(w, domain.NewError(domain.ErrFeatureDisabled, "import phrases", "phrase import requires the postgres phrase source"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	key, err := rt.uploader.Upload(r.Context(), fileHeader.Filename, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"key": key, "status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}
