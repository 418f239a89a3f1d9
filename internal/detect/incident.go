package detect

import (
	"strings"

	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// incidentKeywords maps each category to its keyword family, in
// classification priority order. First match wins.
var incidentKeywords = []struct {
	category event.Category
	keywords []string
}{
	{event.CategorySafetyCar, []string{"SAFETY CAR DEPLOYED", "SC DEPLOYED", "SAFETY CAR IN THIS LAP"}},
	{event.CategoryVSC, []string{"VIRTUAL SAFETY CAR", "VSC"}},
	{event.CategoryRedFlag, []string{"RED FLAG"}},
	{event.CategoryAccident, []string{"ACCIDENT", "COLLISION", "INCIDENT"}},
	{event.CategoryPenalty, []string{"PENALTY", "INVESTIGATION", "NO FURTHER ACTION"}},
}

// Classify returns the incident category of a control message, matching
// case-insensitively against the ordered keyword families. A message
// matching no family is not an incident.
func Classify(text string) (event.Category, bool) {
	upper := strings.ToUpper(text)
	for _, family := range incidentKeywords {
		for _, kw := range family.keywords {
			if strings.Contains(upper, kw) {
				return family.category, true
			}
		}
	}
	return "", false
}

// ClassifyIncidents processes the race-control batch and emits one event
// per unseen message whose category is enabled. Message keys enter the
// ledger unconditionally on first sight, so repeated payload overlap
// from the source can never emit twice. Classification is independent of
// the enable flags: a new safety-car message bumps the safety-car
// counter even when its emission is suppressed.
func ClassifyIncidents(st *State, msgs []openf1.RaceControl, cfg *filter.Config) []event.Event {
	var events []event.Event
	for _, m := range msgs {
		key := messageKey{m.Date.UnixNano(), m.Message}
		if _, seen := st.seenMessages[key]; seen {
			continue
		}
		st.seenMessages[key] = struct{}{}

		cat, ok := Classify(m.Message)
		if !ok {
			continue
		}
		if cat == event.CategorySafetyCar {
			st.Stats.SafetyCars++
		}
		if !cfg.IncidentEnabled(cat) {
			continue
		}
		events = append(events, event.New(cat, cat.DisplayName(), m.Message))
	}
	return events
}
