package detect

import (
	"fmt"
	"sort"

	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// MilestoneInterval is the lap cadence of the standings reminder.
const MilestoneInterval = 10

// CheckMilestone emits a top-3 standings reminder when the current lap
// reaches a new multiple of the interval. The lap is consumed even when
// fewer than three ranked drivers exist, so the trigger cannot resume
// mid-lap once skipped.
func CheckMilestone(st *State, roster openf1.Roster, cfg *filter.Config) []event.Event {
	if !cfg.Milestones {
		return nil
	}
	lap := st.CurrentLap
	if lap <= 0 || lap%MilestoneInterval != 0 || lap == st.LastMilestoneLap {
		return nil
	}
	st.LastMilestoneLap = lap

	ranked := make([]openf1.Position, 0, len(st.LatestPositions))
	for _, pos := range st.LatestPositions {
		ranked = append(ranked, pos)
	}
	if len(ranked) < 3 {
		return nil
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Position < ranked[j].Position })

	msg := fmt.Sprintf("Lap %d - Top 3: 1. %s, 2. %s, 3. %s",
		lap,
		roster.Code(ranked[0].DriverNumber),
		roster.Code(ranked[1].DriverNumber),
		roster.Code(ranked[2].DriverNumber))
	return []event.Event{event.New(event.CategoryMilestone, event.CategoryMilestone.DisplayName(), msg)}
}
