package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementScan("arrival", "accepted")
		m.ObserveScanLatency(time.Millisecond)
		m.IncrementTransition("approved", true)
		m.IncrementPush("failed")
	})
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementScan("arrival", "accepted")
	m.IncrementScan("arrival", "rejected")
	m.IncrementScan("arrival", "rejected")
	m.IncrementTransition("approved", true)
	m.IncrementPush("dropped")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScanOutcome.WithLabelValues("arrival", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScanOutcome.WithLabelValues("arrival", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeaveTransitions.WithLabelValues("approved", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PushOutcome.WithLabelValues("dropped")))
}

func TestRegisterSubscriberGauge(t *testing.T) {
	open := 0
	gauge := RegisterSubscriberGauge(prometheus.NewRegistry(), func() int { return open })

	assert.Equal(t, 0.0, testutil.ToFloat64(gauge))
	open = 3
	assert.Equal(t, 3.0, testutil.ToFloat64(gauge))
}
