// Package detect holds the snapshot-diffing and event-detection engine:
// per-session state, the latest-position reducer, and the detectors that
// turn raw telemetry records into deduplicated race events.
package detect

import (
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// messageKey is the dedup identity of a race-control message.
type messageKey struct {
	date int64
	text string
}

// pitKey is the dedup identity of a pit-stop record.
type pitKey struct {
	date         int64
	driverNumber int
}

// State is all session-scoped mutable state, owned exclusively by the
// engine. It is replaced wholesale on session change so detectors never
// observe a partially-reset view.
type State struct {
	// LatestPositions holds at most one entry per driver: the
	// observation with the greatest timestamp processed so far.
	LatestPositions map[int]openf1.Position

	// seenMessages and seenPits guarantee at-most-once emission per
	// distinct raw record. Entries are only removed by session reset.
	seenMessages map[messageKey]struct{}
	seenPits     map[pitKey]struct{}

	CurrentLap       int
	LastMilestoneLap int

	Stats Stats
}

// NewState returns a zero-value session state with initialized ledgers.
func NewState() *State {
	return &State{
		LatestPositions: make(map[int]openf1.Position),
		seenMessages:    make(map[messageKey]struct{}),
		seenPits:        make(map[pitKey]struct{}),
	}
}

// SeenMessage reports whether a race-control message key is in the
// ledger. Exposed for tests.
func (s *State) SeenMessage(m openf1.RaceControl) bool {
	_, ok := s.seenMessages[messageKey{m.Date.UnixNano(), m.Message}]
	return ok
}

// SeenPit reports whether a pit-stop key is in the ledger. Exposed for
// tests.
func (s *State) SeenPit(p openf1.Pit) bool {
	_, ok := s.seenPits[pitKey{p.Date.UnixNano(), p.DriverNumber}]
	return ok
}

// UpdateLap advances the current lap to the highest lap number in the
// batch. An empty batch leaves the lap untouched.
func UpdateLap(st *State, laps []openf1.Lap) {
	for _, lap := range laps {
		if lap.LapNumber > st.CurrentLap {
			st.CurrentLap = lap.LapNumber
		}
	}
}
