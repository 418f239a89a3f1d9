package engine

import (
	"time"

	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/metrics"
	"github.com/pfrederiksen/f1-events/internal/notifier"
)

// Option configures an Engine.
type Option func(*Engine)

// WithSinks sets the downstream sinks events are fanned out to.
func WithSinks(sinks ...notifier.Notifier) Option {
	return func(e *Engine) {
		e.sinks = sinks
	}
}

// WithMetrics replaces the engine's default metric set, so the host can
// serve all metrics from one registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithFilters sets the initial filter configuration.
func WithFilters(cfg *filter.Config) Option {
	return func(e *Engine) {
		e.filters.Store(cfg.Clone())
	}
}

// WithFetchTimeout bounds the fetch phase of each cycle.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.fetchTimeout = d
	}
}

// WithStatusFunc registers a callback invoked on connection-status
// transitions.
func WithStatusFunc(fn func(Status)) Option {
	return func(e *Engine) {
		e.onStatus = fn
	}
}
