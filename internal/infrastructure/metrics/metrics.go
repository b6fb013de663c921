// Package metrics exposes the Prometheus instruments of the server.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "billed"

// Outcome labels
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

// Metrics captures HTTP traffic and bill workflow signals
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	submits         *prometheus.CounterVec
	listFailures    *prometheus.CounterVec
}

// New creates the instruments and registers them on registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proof_uploads_total",
			Help:      "Proof file selections by outcome.",
		}, []string{"outcome"}),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_submits_total",
			Help:      "New bill submissions by outcome.",
		}, []string{"outcome"}),
		listFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_list_failures_total",
			Help:      "Failed bill list fetches by status code.",
		}, []string{"status"}),
	}

	registerer.MustRegister(m.requests, m.requestDuration, m.uploads, m.submits, m.listFailures)
	return m
}

// ObserveRequest records one served request
func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// IncUpload records a proof selection outcome
func (m *Metrics) IncUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

// IncSubmit records a submission outcome
func (m *Metrics) IncSubmit(outcome string) {
	if m == nil {
		return
	}
	m.submits.WithLabelValues(outcome).Inc()
}

// IncListFailure records a failed list fetch, status 0 meaning unknown
func (m *Metrics) IncListFailure(status int) {
	if m == nil {
		return
	}
	m.listFailures.WithLabelValues(strconv.Itoa(status)).Inc()
}
