package detect

import (
	"fmt"
	"sort"

	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// DetectOvertakes compares the new reduced position snapshot against the
// previous one and emits an event for every forward move that passes the
// filters. Drivers with no previous entry never emit, so the first cycle
// of a session produces no baseline overtakes. The stored snapshot is
// replaced by the new one whether or not anything fired; an empty batch
// is a no-op so a sparse payload cannot wipe the baseline.
func DetectOvertakes(st *State, latest map[int]openf1.Position, roster openf1.Roster, cfg *filter.Config) []event.Event {
	if len(latest) == 0 {
		return nil
	}

	var events []event.Event
	if len(st.LatestPositions) > 0 {
		type move struct {
			driver   int
			from, to int
		}
		var moves []move
		for num, cur := range latest {
			prev, ok := st.LatestPositions[num]
			if !ok {
				continue
			}
			if cur.Position < prev.Position {
				moves = append(moves, move{driver: num, from: prev.Position, to: cur.Position})
			}
		}
		// Map iteration order is random; sort by resulting rank for
		// stable output.
		sort.Slice(moves, func(i, j int) bool { return moves[i].to < moves[j].to })

		for _, m := range moves {
			if !cfg.Accept(cfg.OvertakeRank, m.to, roster.Team(m.driver)) {
				continue
			}
			st.Stats.Overtakes++
			msg := fmt.Sprintf("%s moved from P%d to P%d", roster.Code(m.driver), m.from, m.to)
			events = append(events, event.New(event.CategoryOvertake, event.CategoryOvertake.DisplayName(), msg))
		}
	}

	st.LatestPositions = latest
	return events
}
