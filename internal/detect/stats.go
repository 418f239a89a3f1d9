package detect

// Stats accumulates running session counters. Reset together with the
// rest of State on session change.
type Stats struct {
	Overtakes  int
	PitStops   int
	SafetyCars int

	// FastestPitStop is the minimum non-null pit duration observed this
	// session, in seconds. Nil until the first timed stop; never
	// increases afterwards.
	FastestPitStop *float64
}

// recordPitDuration folds a timed pit stop into the fastest-stop
// minimum. Called for every new pit record with a duration, whether or
// not the event passed the filters.
func (s *Stats) recordPitDuration(seconds float64) {
	if s.FastestPitStop == nil || seconds < *s.FastestPitStop {
		s.FastestPitStop = &seconds
	}
}
