package detect

import "time"

// Observation is any timestamped per-entity telemetry record.
type Observation interface {
	EntityID() int
	ObservedAt() time.Time
}

// ReduceLatest collapses an unordered batch of observations into the
// single latest record per entity. On an exact timestamp tie the later
// element in input order wins. O(n), no side effects.
func ReduceLatest[T Observation](observations []T) map[int]T {
	latest := make(map[int]T, len(observations))
	for _, obs := range observations {
		cur, ok := latest[obs.EntityID()]
		if !ok || !obs.ObservedAt().Before(cur.ObservedAt()) {
			latest[obs.EntityID()] = obs
		}
	}
	return latest
}
