package detect

import (
	"fmt"

	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// DetectPitStops emits an event for every new, unseen pit record that
// passes the filters. The fastest-stop statistic is tracked for every
// new timed stop regardless of filter outcome; only emission and the
// pit-stop counter are gated.
func DetectPitStops(st *State, pits []openf1.Pit, roster openf1.Roster, cfg *filter.Config) []event.Event {
	var events []event.Event
	for _, pit := range pits {
		key := pitKey{pit.Date.UnixNano(), pit.DriverNumber}
		if _, seen := st.seenPits[key]; seen {
			continue
		}
		st.seenPits[key] = struct{}{}

		if pit.PitDuration != nil {
			st.Stats.recordPitDuration(*pit.PitDuration)
		}

		rank := filter.RankUnknown
		if pos, ok := st.LatestPositions[pit.DriverNumber]; ok {
			rank = pos.Position
		}
		if !cfg.Accept(cfg.PitRank, rank, roster.Team(pit.DriverNumber)) {
			continue
		}
		st.Stats.PitStops++

		rankLabel := "?"
		if rank != filter.RankUnknown {
			rankLabel = fmt.Sprintf("%d", rank)
		}
		lapLabel := "?"
		if pit.LapNumber > 0 {
			lapLabel = fmt.Sprintf("%d", pit.LapNumber)
		}
		msg := fmt.Sprintf("%s (P%s) pitted on Lap %s", roster.Code(pit.DriverNumber), rankLabel, lapLabel)
		events = append(events, event.New(event.CategoryPitStop, event.CategoryPitStop.DisplayName(), msg))
	}
	return events
}
