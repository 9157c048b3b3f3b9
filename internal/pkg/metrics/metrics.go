package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for scans, leave decisions and real-time pushes.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ScanOutcome *prometheus.CounterVec

	ScanLatency prometheus.Histogram

	LeaveTransitions *prometheus.CounterVec

	// Push outcomes: delivered, failed, dropped
	PushOutcome *prometheus.CounterVec
}

// New registers all metrics on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScanOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_scans_total",
			Help: "Badge scans by event type and outcome",
		}, []string{"event_type", "outcome"}), // outcome: "accepted", "rejected", "error"

		ScanLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "presence_scan_duration_seconds",
			Help:    "Duration of scan validation, ledger append and aggregation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		LeaveTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_leave_transitions_total",
			Help: "Leave request transitions by target status and whether an audit entry was written",
		}, []string{"status", "audited"}),

		PushOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_push_total",
			Help: "Real-time push attempts by outcome",
		}, []string{"outcome"}),
	}
}

// RegisterSubscriberGauge exposes the number of open real-time streams on this instance.
func RegisterSubscriberGauge(reg prometheus.Registerer, count func() int) prometheus.GaugeFunc {
	return promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "presence_stream_subscribers",
		Help: "Open notification streams on this instance",
	}, func() float64 { return float64(count()) })
}

func (m *Metrics) IncrementScan(eventType, outcome string) {
	if m != nil {
		m.ScanOutcome.WithLabelValues(eventType, outcome).Inc()
	}
}

func (m *Metrics) ObserveScanLatency(d time.Duration) {
	if m != nil {
		m.ScanLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementTransition(status string, audited bool) {
	if m != nil {
		label := "false"
		if audited {
			label = "true"
		}
		m.LeaveTransitions.WithLabelValues(status, label).Inc()
	}
}

func (m *Metrics) IncrementPush(outcome string) {
	if m != nil {
		m.PushOutcome.WithLabelValues(outcome).Inc()
	}
}
