package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("/employee/bills", "GET", 200, 15*time.Millisecond)
	m.ObserveRequest("/employee/bills", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)
	m.IncUpload(OutcomeRejected)
	m.IncSubmit(OutcomeSuccess)
	m.IncSubmit(OutcomeFailure)
	m.IncListFailure(500)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/employee/bills", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submits.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listFailures.WithLabelValues("500")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", "GET", 200, time.Millisecond)
		m.IncUpload(OutcomeSuccess)
		m.IncSubmit(OutcomeSuccess)
		m.IncListFailure(0)
	})
}
