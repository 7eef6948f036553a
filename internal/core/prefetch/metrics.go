package prefetch

import (
	"github.com/prometheus/client_golang/prometheus"

	"Handlecache/internal/atproto/identity"
)

// Metrics holds the Prometheus collectors for the prefetch manager
type Metrics struct {
	navigationsTotal *prometheus.CounterVec
	resolutionsTotal *prometheus.CounterVec
	inFlight         prometheus.Gauge
}

// NewMetrics creates the prefetch collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		navigationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "handlecache",
				Name:      "navigation_events_total",
				Help:      "Navigation events handled, by outcome.",
			},
			[]string{"outcome"},
		),
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "handlecache",
				Name:      "handle_resolutions_total",
				Help:      "Handle resolver calls, by status.",
			},
			[]string{"status"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "handlecache",
			Name:      "navigation_tasks_in_flight",
			Help:      "Navigation events currently being handled.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.navigationsTotal, m.resolutionsTotal, m.inFlight)
	}
	return m
}

func (m *Metrics) observeOutcome(outcome Outcome) {
	if m == nil {
		return
	}
	m.navigationsTotal.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) observeResolution(status identity.ResolutionStatus) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) taskStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) taskFinished() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}
