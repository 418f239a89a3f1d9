// Package filter gates which detected race events are surfaced.
//
// Two independent predicates are evaluated per candidate event: a rank
// tier (all / top5 / top10) and a team allowlist (substring match on the
// driver's team name). How the two compose (AND vs OR) is itself a
// config knob; the default is AND. Incident categories and the lap
// milestone feature carry their own enable flags.
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/f1-events/internal/event"
)

// RankMode selects which running-order positions pass the rank predicate.
type RankMode string

const (
	RankAll   RankMode = "all"
	RankTop5  RankMode = "top5"
	RankTop10 RankMode = "top10"
)

// ComposeMode controls how the rank and team predicates combine.
type ComposeMode string

const (
	ComposeAnd ComposeMode = "and"
	ComposeOr  ComposeMode = "or"
)

// RankUnknown is the sentinel for a driver with no entry in the current
// position snapshot. Tiered rank modes never accept it.
const RankUnknown = 0

// IncidentToggles enables or disables each incident category
// individually. Classification still happens for disabled categories;
// only emission is suppressed.
type IncidentToggles struct {
	SafetyCar bool `json:"safety_car"`
	VSC       bool `json:"vsc"`
	RedFlag   bool `json:"red_flag"`
	Accidents bool `json:"accidents"`
	Penalties bool `json:"penalties"`
}

// Config is the persisted notification-filter document. It is owned by
// the host application and read-only to the engine during a cycle.
type Config struct {
	OvertakeRank RankMode        `json:"overtake_rank"`
	PitRank      RankMode        `json:"pit_rank"`
	Teams        []string        `json:"teams"`
	Incidents    IncidentToggles `json:"incidents"`
	Milestones   bool            `json:"milestones"`
	SessionStart bool            `json:"session_start"`
	Compose      ComposeMode     `json:"compose"`
}

// Default returns the filter configuration used when no document exists
// or a field is absent from the persisted one.
func Default() *Config {
	return &Config{
		OvertakeRank: RankAll,
		PitRank:      RankAll,
		Teams:        []string{},
		Incidents: IncidentToggles{
			SafetyCar: true,
			VSC:       true,
			RedFlag:   true,
			Accidents: true,
			Penalties: true,
		},
		Milestones:   true,
		SessionStart: true,
		Compose:      ComposeAnd,
	}
}

// RankAllowed reports whether a rank passes the given mode. Tiered
// modes require the rank to be known.
func RankAllowed(mode RankMode, rank int) bool {
	switch mode {
	case RankTop5:
		return rank != RankUnknown && rank <= 5
	case RankTop10:
		return rank != RankUnknown && rank <= 10
	default:
		return true
	}
}

// TeamAllowed reports whether a team name passes the allowlist. An
// empty allowlist passes everything; otherwise the team name must
// contain at least one allowlisted substring (case-sensitive, matching
// how team names come off the wire).
func (c *Config) TeamAllowed(team string) bool {
	if len(c.Teams) == 0 {
		return true
	}
	for _, want := range c.Teams {
		if strings.Contains(team, want) {
			return true
		}
	}
	return false
}

// Accept combines the rank and team predicates under the configured
// composition mode.
func (c *Config) Accept(mode RankMode, rank int, team string) bool {
	rankOK := RankAllowed(mode, rank)
	teamOK := c.TeamAllowed(team)
	if c.Compose == ComposeOr {
		return rankOK || teamOK
	}
	return rankOK && teamOK
}

// IncidentEnabled reports whether events of the given incident category
// may be emitted.
func (c *Config) IncidentEnabled(cat event.Category) bool {
	switch cat {
	case event.CategorySafetyCar:
		return c.Incidents.SafetyCar
	case event.CategoryVSC:
		return c.Incidents.VSC
	case event.CategoryRedFlag:
		return c.Incidents.RedFlag
	case event.CategoryAccident:
		return c.Incidents.Accidents
	case event.CategoryPenalty:
		return c.Incidents.Penalties
	default:
		return false
	}
}

// Clone returns a deep copy so a cycle can hold a stable view while the
// host updates the live config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Teams = make([]string, len(c.Teams))
	copy(clone.Teams, c.Teams)
	return &clone
}

// String returns a human-readable summary of the active criteria.
func (c *Config) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Overtakes: %s", c.OvertakeRank))
	parts = append(parts, fmt.Sprintf("Pit stops: %s", c.PitRank))
	if len(c.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(c.Teams, ", ")))
	}
	var incidents []string
	for _, cat := range event.IncidentCategories {
		if c.IncidentEnabled(cat) {
			incidents = append(incidents, cat.DisplayName())
		}
	}
	if len(incidents) > 0 {
		parts = append(parts, fmt.Sprintf("Incidents: %s", strings.Join(incidents, ", ")))
	} else {
		parts = append(parts, "Incidents: none")
	}
	if c.Milestones {
		parts = append(parts, "Milestones: on")
	}
	parts = append(parts, fmt.Sprintf("Compose: %s", c.Compose))
	return strings.Join(parts, " | ")
}
