package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the platform's Prometheus collectors.
//
// Metrics:
//   - sapiens_uploads_total: uploaded files by validation outcome
//   - sapiens_validations_total: validation runs by result
//   - sapiens_analyses_total: analyses by terminal status
//   - sapiens_analysis_duration_seconds: end-to-end analysis duration
//   - sapiens_pipeline_stage_duration_seconds: per-stage pipeline duration
//   - sapiens_csv_queries_total: CSV query executions
type Metrics struct {
	registry *prometheus.Registry

	uploadsTotal     *prometheus.CounterVec
	validationsTotal *prometheus.CounterVec
	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	stageDuration    *prometheus.HistogramVec
	queriesTotal     prometheus.Counter
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sapiens",
				Name:      "uploads_total",
				Help:      "Total number of uploaded files by validation outcome",
			},
			[]string{"outcome"},
		),

		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sapiens",
				Name:      "validations_total",
				Help:      "Total number of file validations by result",
			},
			[]string{"result"},
		),

		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sapiens",
				Name:      "analyses_total",
				Help:      "Total number of analyses by terminal status",
			},
			[]string{"status"},
		),

		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sapiens",
				Name:      "analysis_duration_seconds",
				Help:      "End-to-end duration of completed analyses",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sapiens",
				Name:      "pipeline_stage_duration_seconds",
				Help:      "Duration of individual pipeline stages",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"stage"},
		),

		queriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sapiens",
				Name:      "csv_queries_total",
				Help:      "Total number of CSV query executions",
			},
		),
	}

	registry.MustRegister(
		m.uploadsTotal,
		m.validationsTotal,
		m.analysesTotal,
		m.analysisDuration,
		m.stageDuration,
		m.queriesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordUpload counts one upload; outcome is "accepted" or "rejected".
func (m *Metrics) RecordUpload(outcome string) {
	m.uploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordValidation counts one validation; result is "valid" or "invalid".
func (m *Metrics) RecordValidation(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.validationsTotal.WithLabelValues(result).Inc()
}

// RecordAnalysis counts one finished analysis and its duration.
func (m *Metrics) RecordAnalysis(status string, duration time.Duration) {
	m.analysesTotal.WithLabelValues(status).Inc()
	m.analysisDuration.Observe(duration.Seconds())
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordQuery counts one CSV query execution.
func (m *Metrics) RecordQuery() {
	m.queriesTotal.Inc()
}

// Handler exposes the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
