package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// fakeSource serves canned telemetry and records per-resource errors.
type fakeSource struct {
	mu sync.Mutex

	session     *openf1.Session
	positions   []openf1.Position
	raceControl []openf1.RaceControl
	pits        []openf1.Pit
	laps        []openf1.Lap
	drivers     []openf1.Driver

	sessionErr   error
	positionsErr error
	driversErr   error

	// blockSession, when non-nil, parks LatestSession until closed.
	// entered is closed on first entry so tests can wait for the park.
	blockSession chan struct{}
	entered      chan struct{}
	enterOnce    sync.Once
}

func (f *fakeSource) LatestSession(ctx context.Context) (*openf1.Session, error) {
	f.mu.Lock()
	block := f.blockSession
	entered := f.entered
	f.mu.Unlock()
	if entered != nil {
		f.enterOnce.Do(func() { close(entered) })
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.sessionErr
}

func (f *fakeSource) Positions(ctx context.Context, sessionKey int) ([]openf1.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.positions, f.positionsErr
}

func (f *fakeSource) RaceControl(ctx context.Context, sessionKey int) ([]openf1.RaceControl, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raceControl, nil
}

func (f *fakeSource) PitStops(ctx context.Context, sessionKey int) ([]openf1.Pit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pits, nil
}

func (f *fakeSource) Laps(ctx context.Context, sessionKey int) ([]openf1.Lap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.laps, nil
}

func (f *fakeSource) Drivers(ctx context.Context, sessionKey int) ([]openf1.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drivers, f.driversErr
}

func (f *fakeSource) set(mutate func(*fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mutate(f)
}

// captureSink records every notified event.
type captureSink struct {
	mu     sync.Mutex
	events []event.Event
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Notify(events []event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *captureSink) take() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

func raceSource() *fakeSource {
	now := time.Date(2025, 5, 4, 14, 0, 0, 0, time.UTC)
	return &fakeSource{
		session: &openf1.Session{SessionKey: 9158, SessionName: "Race", SessionType: "Race", MeetingName: "Monaco Grand Prix"},
		positions: []openf1.Position{
			{DriverNumber: 1, Position: 1, Date: now},
			{DriverNumber: 4, Position: 2, Date: now},
			{DriverNumber: 16, Position: 3, Date: now},
		},
		laps: []openf1.Lap{{DriverNumber: 1, LapNumber: 1}},
		drivers: []openf1.Driver{
			{DriverNumber: 1, NameAcronym: "VER", TeamName: "Red Bull Racing"},
			{DriverNumber: 4, NameAcronym: "NOR", TeamName: "McLaren"},
			{DriverNumber: 16, NameAcronym: "LEC", TeamName: "Ferrari"},
		},
	}
}

func categories(events []event.Event) []event.Category {
	out := make([]event.Category, len(events))
	for i, e := range events {
		out[i] = e.Category
	}
	return out
}

func TestCycleFirstObservationEmitsOnlySessionStart(t *testing.T) {
	src := raceSource()
	sink := &captureSink{}
	eng := New(src, WithSinks(sink))

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	events := sink.take()
	if len(events) != 1 || events[0].Category != event.CategorySessionStart {
		t.Fatalf("first cycle events = %v, want one session_start", categories(events))
	}
	if eng.Session() == nil || eng.Session().SessionKey != 9158 {
		t.Errorf("tracked session = %+v", eng.Session())
	}
}

func TestCycleDetectsOvertake(t *testing.T) {
	src := raceSource()
	sink := &captureSink{}
	eng := New(src, WithSinks(sink))

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("baseline cycle: %v", err)
	}
	sink.take()

	later := time.Date(2025, 5, 4, 14, 0, 2, 0, time.UTC)
	src.set(func(f *fakeSource) {
		f.positions = []openf1.Position{
			{DriverNumber: 1, Position: 2, Date: later},
			{DriverNumber: 4, Position: 1, Date: later},
			{DriverNumber: 16, Position: 3, Date: later},
		}
	})

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	events := sink.take()
	if len(events) != 1 || events[0].Category != event.CategoryOvertake {
		t.Fatalf("events = %v, want one overtake", categories(events))
	}
	if events[0].Message != "NOR moved from P2 to P1" {
		t.Errorf("message = %q", events[0].Message)
	}
	if eng.Stats().Overtakes != 1 {
		t.Errorf("overtake counter = %d, want 1", eng.Stats().Overtakes)
	}
}

func TestCycleDeduplicatesAcrossCycles(t *testing.T) {
	src := raceSource()
	now := time.Date(2025, 5, 4, 14, 5, 0, 0, time.UTC)
	src.set(func(f *fakeSource) {
		f.raceControl = []openf1.RaceControl{{Date: now, Message: "RED FLAG"}}
		f.pits = []openf1.Pit{{DriverNumber: 1, LapNumber: 1, Date: now}}
	})
	sink := &captureSink{}
	eng := New(src, WithSinks(sink))

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	got := categories(sink.take())
	want := map[event.Category]bool{
		event.CategorySessionStart: true,
		event.CategoryRedFlag:      true,
		event.CategoryPitStop:      true,
	}
	if len(got) != len(want) {
		t.Fatalf("first cycle events = %v", got)
	}
	for _, cat := range got {
		if !want[cat] {
			t.Errorf("unexpected category %q", cat)
		}
	}

	// Identical payload next cycle: everything is ledgered already.
	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if events := sink.take(); len(events) != 0 {
		t.Fatalf("repeat payload emitted %v", categories(events))
	}
}

func TestCycleSessionChangeResetsState(t *testing.T) {
	src := raceSource()
	now := time.Date(2025, 5, 4, 14, 5, 0, 0, time.UTC)
	src.set(func(f *fakeSource) {
		f.raceControl = []openf1.RaceControl{{Date: now, Message: "RED FLAG"}}
	})
	sink := &captureSink{}
	eng := New(src, WithSinks(sink))

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	sink.take()

	// New session key: same control message must emit again because the
	// ledger was reset with the rest of the session state.
	src.set(func(f *fakeSource) {
		f.session = &openf1.Session{SessionKey: 9159, SessionName: "Race", SessionType: "Race"}
	})
	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	events := sink.take()
	var sawStart, sawRedFlag bool
	for _, e := range events {
		switch e.Category {
		case event.CategorySessionStart:
			sawStart = true
		case event.CategoryRedFlag:
			sawRedFlag = true
		}
	}
	if !sawStart || !sawRedFlag {
		t.Fatalf("after session change got %v, want session_start and red_flag", categories(events))
	}
	if eng.Stats().Overtakes != 0 {
		t.Errorf("stats survived the session reset")
	}
}

func TestCycleFetchErrorAbortsBeforeDetectors(t *testing.T) {
	src := raceSource()
	sink := &captureSink{}
	eng := New(src, WithSinks(sink))

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("baseline cycle: %v", err)
	}
	sink.take()

	src.set(func(f *fakeSource) {
		f.positionsErr = errors.New("upstream down")
	})
	if err := eng.Cycle(context.Background()); err == nil {
		t.Fatal("expected a cycle error when a fetch fails")
	}
	if events := sink.take(); len(events) != 0 {
		t.Fatalf("failed cycle emitted %v", categories(events))
	}

	// Recovery: the baseline survived the aborted cycle, so a position
	// swap now produces exactly one overtake, not a re-baseline.
	later := time.Date(2025, 5, 4, 14, 0, 4, 0, time.UTC)
	src.set(func(f *fakeSource) {
		f.positionsErr = nil
		f.positions = []openf1.Position{
			{DriverNumber: 1, Position: 1, Date: later},
			{DriverNumber: 4, Position: 3, Date: later},
			{DriverNumber: 16, Position: 2, Date: later},
		}
	})
	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("recovery cycle: %v", err)
	}
	events := sink.take()
	if len(events) != 1 || events[0].Category != event.CategoryOvertake {
		t.Fatalf("recovery events = %v, want one overtake", categories(events))
	}
}

func TestCycleNoActiveSession(t *testing.T) {
	src := &fakeSource{}
	sink := &captureSink{}

	var statuses []Status
	eng := New(src, WithSinks(sink), WithStatusFunc(func(s Status) {
		statuses = append(statuses, s)
	}))

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if events := sink.take(); len(events) != 0 {
		t.Fatalf("no-session cycle emitted %v", categories(events))
	}
	if len(statuses) != 1 || statuses[0].Connected || statuses[0].Reason != "no active session" {
		t.Errorf("statuses = %+v", statuses)
	}
}

func TestCycleSessionFetchError(t *testing.T) {
	src := &fakeSource{sessionErr: errors.New("timeout")}
	eng := New(src)

	if err := eng.Cycle(context.Background()); err == nil {
		t.Fatal("expected an error when the session fetch fails")
	}
}

func TestCycleInFlightGuard(t *testing.T) {
	src := raceSource()
	block := make(chan struct{})
	entered := make(chan struct{})
	src.set(func(f *fakeSource) {
		f.blockSession = block
		f.entered = entered
	})

	eng := New(src)

	done := make(chan error, 1)
	go func() { done <- eng.Cycle(context.Background()) }()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle never reached the source")
	}

	// The in-flight slot is taken before the fetch, so a concurrent
	// request must be rejected rather than queued.
	if err := eng.Cycle(context.Background()); !errors.Is(err, ErrCycleInFlight) {
		t.Fatalf("concurrent Cycle = %v, want ErrCycleInFlight", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("blocked cycle finished with %v", err)
	}
}

func TestCycleStatusTransitions(t *testing.T) {
	src := raceSource()

	var mu sync.Mutex
	var statuses []Status
	eng := New(src, WithStatusFunc(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s)
	}))

	// Two healthy cycles: the callback fires once, on the transition.
	for i := 0; i < 2; i++ {
		if err := eng.Cycle(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(statuses) != 1 || !statuses[0].Connected {
		t.Fatalf("statuses = %+v, want a single connected transition", statuses)
	}
}

func TestSetFiltersSnapshotsPerCycle(t *testing.T) {
	src := raceSource()
	sink := &captureSink{}
	eng := New(src, WithSinks(sink))

	cfg := filter.Default()
	cfg.SessionStart = false
	eng.SetFilters(cfg)

	// Mutating the caller's copy after SetFilters must not leak in.
	cfg.SessionStart = true

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if events := sink.take(); len(events) != 0 {
		t.Fatalf("session_start emitted despite disabled flag: %v", categories(events))
	}
	if eng.Filters().SessionStart {
		t.Error("stored filters reflect the caller's later mutation")
	}
}

func TestCycleRosterFetchFailureDegradesLabels(t *testing.T) {
	src := raceSource()
	src.set(func(f *fakeSource) {
		f.driversErr = errors.New("roster unavailable")
	})
	sink := &captureSink{}
	eng := New(src, WithSinks(sink))

	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("baseline cycle: %v", err)
	}
	sink.take()

	later := time.Date(2025, 5, 4, 14, 0, 2, 0, time.UTC)
	src.set(func(f *fakeSource) {
		f.positions = []openf1.Position{
			{DriverNumber: 1, Position: 2, Date: later},
			{DriverNumber: 4, Position: 1, Date: later},
			{DriverNumber: 16, Position: 3, Date: later},
		}
	})
	if err := eng.Cycle(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	events := sink.take()
	if len(events) != 1 {
		t.Fatalf("events = %v", categories(events))
	}
	if events[0].Message != "Driver 4 moved from P2 to P1" {
		t.Errorf("message = %q, want numeric fallback label", events[0].Message)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	src := raceSource()
	eng := New(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
