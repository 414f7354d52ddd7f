package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ControlNumbersIssued *prometheus.CounterVec
	RequestDecisions     *prometheus.CounterVec
	DecisionDegraded     prometheus.Counter
	NotificationFailures prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ControlNumbersIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bsphere_control_numbers_issued_total",
			Help: "Total control numbers issued, labelled by document type",
		}, []string{"document_type"}),
		RequestDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bsphere_request_decisions_total",
			Help: "Total request workflow decisions, labelled by outcome",
		}, []string{"outcome"}),
		DecisionDegraded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bsphere_request_decision_degraded_total",
			Help: "Decisions that completed with non-fatal secondary failures",
		}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bsphere_notification_failures_total",
			Help: "Outbound notifications that could not be created",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bsphere_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// IncControlNumberIssued records one issued control number for a document type.
func (m *Metrics) IncControlNumberIssued(documentType string) {
	m.ControlNumbersIssued.WithLabelValues(documentType).Inc()
}

// IncRequestDecision records one terminal workflow decision.
func (m *Metrics) IncRequestDecision(outcome string) {
	m.RequestDecisions.WithLabelValues(outcome).Inc()
}
