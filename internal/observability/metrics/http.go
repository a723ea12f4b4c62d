package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "friendsfixer"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	correctionsTotal   *prometheus.CounterVec
	correctionDuration *prometheus.HistogramVec
	hintsRetrieved     *prometheus.HistogramVec
	noHintsTotal       *prometheus.CounterVec
	postEditsTotal     *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
	indexEntries       prometheus.Gauge
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	correctionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correction",
			Name:      "total",
			Help:      "Completed corrections by K-note state.",
		},
		[]string{"service", "knote", "model"},
	)
	correctionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "correction",
			Name:      "duration_seconds",
			Help:      "End-to-end correction duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"service"},
	)
	hintsRetrieved := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "hints",
			Help:      "Hints retrieved for the user text per correction.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
		},
		[]string{"service", "endpoint"},
	)
	noHintsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "no_hints_total",
			Help:      "Requests for which no hint passed the similarity floor.",
		},
		[]string{"service", "endpoint"},
	)
	postEditsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correction",
			Name:      "post_edits_total",
			Help:      "Corrections whose final text differs from the enforced raw text.",
		},
		[]string{"service"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_open",
			Help:      "1 while the circuit breaker for an operation is open, 0.5 half-open, 0 closed.",
		},
		[]string{"service", "operation"},
	)
	indexEntries := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "entries",
			Help:      "Phrase entries in the serving index.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		correctionsTotal,
		correctionDuration,
		hintsRetrieved,
		noHintsTotal,
		postEditsTotal,
		breakerState,
		indexEntries,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		correctionsTotal:   correctionsTotal,
		correctionDuration: correctionDuration,
		hintsRetrieved:     hintsRetrieved,
		noHintsTotal:       noHintsTotal,
		postEditsTotal:     postEditsTotal,
		breakerState:       breakerState,
		indexEntries:       indexEntries,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := normalizePath(r.URL.Path)
		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch path {
	case "/healthz", "/metrics", "/v1/correct", "/v1/hints", "/v1/stats", "/v1/phrases/import":
		return path
	default:
		return "other"
	}
}

// RecordCorrection observes one completed correction.
func (m *HTTPServerMetrics) RecordCorrection(service, knote, model string, hints int, postEdited bool, duration time.Duration) {
	if knote == "" {
		knote = "unknown"
	}
	if model == "" {
		model = "unknown"
	}
	m.correctionsTotal.WithLabelValues(service, knote, model).Inc()
	m.correctionDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.RecordHints(service, "correct", hints)
	if postEdited {
		m.postEditsTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordHints(service, endpoint string, hints int) {
	m.hintsRetrieved.WithLabelValues(service, endpoint).Observe(float64(hints))
	if hints == 0 {
		m.noHintsTotal.WithLabelValues(service, endpoint).Inc()
	}
}

// RecordBreakerState is shaped to plug into resilience.Config.OnBreakerChange.
func (m *HTTPServerMetrics) RecordBreakerState(service, operation, state string) {
	value := 0.0
	switch state {
	case "open":
		value = 1
	case "half-open":
		value = 0.5
	}
	m.breakerState.WithLabelValues(service, operation).Set(value)
}

func (m *HTTPServerMetrics) SetIndexEntries(n int) {
	m.indexEntries.Set(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
