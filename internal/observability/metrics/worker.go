package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	llmCallsTotal   *prometheus.CounterVec
	deadLetters     *prometheus.CounterVec
	reviewFlagged   *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintake",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docintake",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	llmCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total LLM calls by operation.",
		},
		[]string{"service", "operation"},
	)
	deadLetters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "worker",
			Name:      "dead_letters_total",
			Help:      "Total dead letter records created by entity type.",
		},
		[]string{"service", "entity_type"},
	)
	reviewFlagged := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintake",
			Subsystem: "worker",
			Name:      "review_flagged_total",
			Help:      "Total documents flagged for human review.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		llmCallsTotal,
		deadLetters,
		reviewFlagged,
	)

	return &WorkerMetrics{
		registry:        registry,
		service:         service,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		llmCallsTotal:   llmCallsTotal,
		deadLetters:     deadLetters,
		reviewFlagged:   reviewFlagged,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(m.service, status).Inc()
	m.processDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordLLMCall(operation string) {
	if operation == "" {
		operation = "unknown"
	}
	m.llmCallsTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *WorkerMetrics) RecordDeadLetter(entityType string) {
	if entityType == "" {
		entityType = "unknown"
	}
	m.deadLetters.WithLabelValues(m.service, entityType).Inc()
}

func (m *WorkerMetrics) RecordReviewFlagged() {
	m.reviewFlagged.WithLabelValues(m.service).Inc()
}
