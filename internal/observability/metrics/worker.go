package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	importTotal    *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	importInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	importTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "phrase_import_total",
			Help:      "Total knowledge-base imports by status.",
		},
		[]string{"service", "status"},
	)
	importDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "phrase_import_duration_seconds",
			Help:      "Knowledge-base import duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	importInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "phrase_import_in_flight",
			Help:      "Number of in-flight knowledge-base imports.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(importTotal, importDuration, importInFlight)

	return &WorkerMetrics{
		registry:       registry,
		importTotal:    importTotal,
		importDuration: importDuration,
		importInFlight: importInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartImport() {
	m.importInFlight.Inc()
}

func (m *WorkerMetrics) FinishImport(service string, duration time.Duration, err error) {
	m.importInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.importTotal.WithLabelValues(service, status).Inc()
	m.importDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
