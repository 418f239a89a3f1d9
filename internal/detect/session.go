package detect

import (
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// Tracker detects session-boundary changes across polling cycles.
type Tracker struct {
	session *openf1.Session
}

// NewTracker starts with no tracked session, so the first observed
// session always counts as a change.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Current returns the tracked session, nil before the first observation.
func (t *Tracker) Current() *openf1.Session {
	return t.session
}

// Observe records the newly fetched session and reports whether its key
// differs from the tracked one. On a change the caller must replace the
// whole session State before running any detector.
func (t *Tracker) Observe(s *openf1.Session) bool {
	changed := t.session == nil || t.session.SessionKey != s.SessionKey
	t.session = s
	return changed
}
