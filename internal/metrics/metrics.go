// Package metrics provides Prometheus metrics for the f1-events engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pfrederiksen/f1-events/internal/detect"
)

// Metrics tracks the operational and session counters exposed on the
// /metrics endpoint.
type Metrics struct {
	registry *prometheus.Registry

	// Polling loop health.
	cyclesTotal   prometheus.Counter
	cyclesSkipped prometheus.Counter
	cycleFailures prometheus.Counter
	cycleDuration prometheus.Histogram
	fetchErrors   *prometheus.CounterVec
	connected     prometheus.Gauge

	// Emission and session statistics.
	eventsEmitted *prometheus.CounterVec

	sessionOvertakes  prometheus.Gauge
	sessionPitStops   prometheus.Gauge
	sessionSafetyCars prometheus.Gauge
	fastestPitStop    prometheus.Gauge
	currentLap        prometheus.Gauge
}

// New creates the metric set on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		cyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "f1events", Name: "cycles_total",
			Help: "Polling cycles attempted.",
		}),
		cyclesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "f1events", Name: "cycles_skipped_total",
			Help: "Ticks skipped because a cycle was still in flight.",
		}),
		cycleFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "f1events", Name: "cycle_failures_total",
			Help: "Cycles aborted by a fetch failure.",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "f1events", Name: "cycle_duration_seconds",
			Help:    "Wall time of a full polling cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		fetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1events", Name: "fetch_errors_total",
			Help: "Upstream fetch failures by resource.",
		}, []string{"resource"}),
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1events", Name: "connected",
			Help: "1 when the last cycle completed, 0 when degraded.",
		}),
		eventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "f1events", Name: "events_emitted_total",
			Help: "Events emitted after filtering, by category.",
		}, []string{"category"}),
		sessionOvertakes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1events", Name: "session_overtakes",
			Help: "Overtakes counted this session.",
		}),
		sessionPitStops: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1events", Name: "session_pit_stops",
			Help: "Pit stops counted this session.",
		}),
		sessionSafetyCars: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1events", Name: "session_safety_cars",
			Help: "Safety-car deployments this session.",
		}),
		fastestPitStop: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1events", Name: "session_fastest_pit_stop_seconds",
			Help: "Fastest timed pit stop this session, 0 until one exists.",
		}),
		currentLap: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "f1events", Name: "session_current_lap",
			Help: "Current lead lap of the tracked session.",
		}),
	}
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CycleStarted counts an attempted cycle.
func (m *Metrics) CycleStarted() { m.cyclesTotal.Inc() }

// CycleSkipped counts a tick dropped while a cycle was in flight.
func (m *Metrics) CycleSkipped() { m.cyclesSkipped.Inc() }

// CycleFailed counts an aborted cycle and flips the connection gauge.
func (m *Metrics) CycleFailed() {
	m.cycleFailures.Inc()
	m.connected.Set(0)
}

// CycleCompleted records a successful cycle.
func (m *Metrics) CycleCompleted(elapsed time.Duration) {
	m.cycleDuration.Observe(elapsed.Seconds())
	m.connected.Set(1)
}

// FetchError counts a per-resource upstream failure.
func (m *Metrics) FetchError(resource string) {
	m.fetchErrors.WithLabelValues(resource).Inc()
}

// EventEmitted counts one filtered emission.
func (m *Metrics) EventEmitted(category string) {
	m.eventsEmitted.WithLabelValues(category).Inc()
}

// ObserveSession mirrors the session-scoped counters after each cycle.
func (m *Metrics) ObserveSession(st *detect.State) {
	m.sessionOvertakes.Set(float64(st.Stats.Overtakes))
	m.sessionPitStops.Set(float64(st.Stats.PitStops))
	m.sessionSafetyCars.Set(float64(st.Stats.SafetyCars))
	if st.Stats.FastestPitStop != nil {
		m.fastestPitStop.Set(*st.Stats.FastestPitStop)
	} else {
		m.fastestPitStop.Set(0)
	}
	m.currentLap.Set(float64(st.CurrentLap))
}
