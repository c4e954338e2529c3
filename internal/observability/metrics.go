package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	requestsTotal            *prometheus.CounterVec
	requestLatencySeconds    *prometheus.HistogramVec
	markSubmissionsTotal     *prometheus.CounterVec
	escalationsTotal         prometheus.Counter
	approvalTransitionsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examcore_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "examcore_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		markSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examcore_mark_submissions_total",
			Help: "Mark submissions by ledger type and outcome.",
		}, []string{"type", "status"})

		escalationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "examcore_third_examiner_escalations_total",
			Help: "Exams escalated to a third examiner.",
		})

		approvalTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examcore_approval_transitions_total",
			Help: "Approval state transitions by mark type and resulting state.",
		}, []string{"mark_type", "state"})

		prometheus.MustRegister(requestsTotal, requestLatencySeconds, markSubmissionsTotal, escalationsTotal, approvalTransitionsTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the request latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// MarkSubmissions exposes the submissions counter.
func MarkSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return markSubmissionsTotal
}

// Escalations exposes the third-examiner escalation counter.
func Escalations() prometheus.Counter {
	RegisterMetrics()
	return escalationsTotal
}

// ApprovalTransitions exposes the approval transition counter.
func ApprovalTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return approvalTransitionsTotal
}
