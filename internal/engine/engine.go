// Package engine drives the polling loop: each cycle fetches a
// consistent time-slice of telemetry, runs the detectors in a fixed
// order against engine-owned session state, and fans accepted events out
// to the configured sinks.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pfrederiksen/f1-events/internal/detect"
	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/logger"
	"github.com/pfrederiksen/f1-events/internal/metrics"
	"github.com/pfrederiksen/f1-events/internal/notifier"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// ErrCycleInFlight is returned when a cycle is requested while the
// previous one has not finished. Overlapping cycles would corrupt the
// dedup ledgers, so the caller drops the tick instead.
var ErrCycleInFlight = errors.New("cycle already in flight")

// Source is the upstream telemetry interface, satisfied by
// openf1.Client and faked in tests.
type Source interface {
	LatestSession(ctx context.Context) (*openf1.Session, error)
	Positions(ctx context.Context, sessionKey int) ([]openf1.Position, error)
	RaceControl(ctx context.Context, sessionKey int) ([]openf1.RaceControl, error)
	PitStops(ctx context.Context, sessionKey int) ([]openf1.Pit, error)
	Laps(ctx context.Context, sessionKey int) ([]openf1.Lap, error)
	Drivers(ctx context.Context, sessionKey int) ([]openf1.Driver, error)
}

// Status is the connection signal surfaced to the host.
type Status struct {
	Connected bool
	Reason    string
}

// Engine owns all session-scoped state and coordinates polling cycles.
// One Engine must never run two cycles concurrently; Cycle enforces
// this itself.
type Engine struct {
	source       Source
	sinks        []notifier.Notifier
	metrics      *metrics.Metrics
	fetchTimeout time.Duration
	onStatus     func(Status)

	filters atomic.Pointer[filter.Config]

	inFlight atomic.Bool

	// Session-scoped; touched only from within a cycle.
	tracker *detect.Tracker
	state   *detect.State
	roster  openf1.Roster

	statusMu   sync.Mutex
	lastStatus *Status
}

// New creates an engine polling the given source.
func New(source Source, opts ...Option) *Engine {
	e := &Engine{
		source:       source,
		metrics:      metrics.New(),
		fetchTimeout: openf1.DefaultTimeout,
		tracker:      detect.NewTracker(),
		state:        detect.NewState(),
		roster:       openf1.Roster{},
	}
	e.filters.Store(filter.Default())
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetFilters swaps the live filter configuration. The engine snapshots
// it once per cycle, so a mid-cycle update takes effect next cycle.
func (e *Engine) SetFilters(cfg *filter.Config) {
	e.filters.Store(cfg.Clone())
}

// Filters returns the live filter configuration.
func (e *Engine) Filters() *filter.Config {
	return e.filters.Load()
}

// Session returns the currently tracked session, nil before the first
// successful cycle.
func (e *Engine) Session() *openf1.Session {
	return e.tracker.Current()
}

// Stats returns a copy of the running session counters.
func (e *Engine) Stats() detect.Stats {
	return e.state.Stats
}

// Metrics exposes the engine's metric set for serving.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Run polls until the context is cancelled. An immediate cycle runs
// first, then one per tick. Errors inside a cycle degrade the
// connection status and are retried implicitly at the next tick; only
// cancellation stops the loop.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	logger.Info("starting polling loop", logger.Fields{"interval": interval.String()})

	e.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling loop stopped", nil)
			return ctx.Err()
		case <-ticker.C:
			e.runCycle(ctx)
		}
	}
}

func (e *Engine) runCycle(ctx context.Context) {
	err := e.Cycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleInFlight):
		e.metrics.CycleSkipped()
		logger.Warn("tick skipped, cycle still in flight", nil)
	default:
		logger.Error("cycle failed", nil, err)
	}
}

// Cycle executes one polling cycle: fetch the session, reset state on a
// session-key change, fetch the remaining resources concurrently, join,
// then run the detectors in order. Any fetch failure aborts the cycle
// before detectors run, so they never observe a partial time-slice.
func (e *Engine) Cycle(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrCycleInFlight
	}
	defer e.inFlight.Store(false)

	e.metrics.CycleStarted()
	start := time.Now()

	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	session, err := e.source.LatestSession(fctx)
	if err != nil {
		e.metrics.FetchError("sessions")
		e.metrics.CycleFailed()
		e.setStatus(false, "fetching session failed")
		return fmt.Errorf("fetching session: %w", err)
	}
	if session == nil {
		e.setStatus(false, "no active session")
		return nil
	}

	cfg := e.filters.Load()

	if e.tracker.Observe(session) {
		e.startSession(fctx, session, cfg)
	}

	batch, err := e.fetchBatch(fctx, session.SessionKey)
	if err != nil {
		e.metrics.CycleFailed()
		e.setStatus(false, "fetch failed")
		return err
	}

	detect.UpdateLap(e.state, batch.laps)
	reduced := detect.ReduceLatest(batch.positions)

	var events []event.Event
	events = append(events, detect.DetectOvertakes(e.state, reduced, e.roster, cfg)...)
	events = append(events, detect.ClassifyIncidents(e.state, batch.raceControl, cfg)...)
	events = append(events, detect.DetectPitStops(e.state, batch.pits, e.roster, cfg)...)
	events = append(events, detect.CheckMilestone(e.state, e.roster, cfg)...)

	e.emit(events)

	e.metrics.ObserveSession(e.state)
	e.metrics.CycleCompleted(time.Since(start))
	e.setStatus(true, "")
	return nil
}

// startSession resets all derived state for a new session key. The
// reset replaces the whole State so detectors can never observe a
// half-cleared view. The roster refetch is non-fatal; missing drivers
// degrade to numeric labels.
func (e *Engine) startSession(ctx context.Context, session *openf1.Session, cfg *filter.Config) {
	logger.Info("new session detected", logger.Fields{
		"session_key": session.SessionKey,
		"name":        session.SessionName,
		"type":        session.SessionType,
		"meeting":     session.MeetingName,
	})

	e.state = detect.NewState()

	drivers, err := e.source.Drivers(ctx, session.SessionKey)
	if err != nil {
		logger.Warn("fetching driver roster failed", logger.Fields{"session_key": session.SessionKey})
		e.metrics.FetchError("drivers")
		e.roster = openf1.Roster{}
	} else {
		e.roster = openf1.NewRoster(drivers)
	}

	if cfg.SessionStart {
		msg := fmt.Sprintf("%s - %s has started", session.SessionName, session.SessionType)
		e.emit([]event.Event{event.New(event.CategorySessionStart, event.CategorySessionStart.DisplayName(), msg)})
	}
}

// batch is one mutually consistent time-slice of telemetry.
type batch struct {
	positions   []openf1.Position
	raceControl []openf1.RaceControl
	pits        []openf1.Pit
	laps        []openf1.Lap
}

// fetchBatch issues the four independent fetches concurrently and joins
// before returning. The first failure aborts the batch.
func (e *Engine) fetchBatch(ctx context.Context, sessionKey int) (*batch, error) {
	var (
		b    batch
		wg   sync.WaitGroup
		errs [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		b.positions, errs[0] = e.source.Positions(ctx, sessionKey)
	}()
	go func() {
		defer wg.Done()
		b.raceControl, errs[1] = e.source.RaceControl(ctx, sessionKey)
	}()
	go func() {
		defer wg.Done()
		b.pits, errs[2] = e.source.PitStops(ctx, sessionKey)
	}()
	go func() {
		defer wg.Done()
		b.laps, errs[3] = e.source.Laps(ctx, sessionKey)
	}()
	wg.Wait()

	resources := [4]string{"position", "race_control", "pit", "laps"}
	for i, err := range errs {
		if err != nil {
			e.metrics.FetchError(resources[i])
			return nil, fmt.Errorf("fetching %s: %w", resources[i], err)
		}
	}
	return &b, nil
}

// emit fans events out to every sink. Sink failures are logged and
// swallowed; delivery is best-effort by contract.
func (e *Engine) emit(events []event.Event) {
	if len(events) == 0 {
		return
	}
	for _, evt := range events {
		e.metrics.EventEmitted(string(evt.Category))
		logger.Debug("event emitted", logger.Fields{
			"category": string(evt.Category),
			"message":  evt.Message,
		})
	}
	for _, sink := range e.sinks {
		if err := sink.Notify(events); err != nil {
			logger.Error("notification delivery failed", logger.Fields{
				"sink":   sink.Name(),
				"events": len(events),
			}, err)
		}
	}
}

// setStatus records the connection signal and invokes the host callback
// on transitions.
func (e *Engine) setStatus(connected bool, reason string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	next := Status{Connected: connected, Reason: reason}
	if e.lastStatus != nil && *e.lastStatus == next {
		return
	}
	e.lastStatus = &next
	if e.onStatus != nil {
		e.onStatus(next)
	}
}
