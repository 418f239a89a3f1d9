package filter

import (
	"encoding/json"
	"fmt"
)

// document mirrors Config with pointer fields so a persisted JSON
// document can be merged over defaults field-by-field. A missing or
// malformed field keeps the default; the document is never rejected
// wholesale.
type document struct {
	OvertakeRank *RankMode    `json:"overtake_rank"`
	PitRank      *RankMode    `json:"pit_rank"`
	Teams        *[]string    `json:"teams"`
	Incidents    *incidentDoc `json:"incidents"`
	Milestones   *bool        `json:"milestones"`
	SessionStart *bool        `json:"session_start"`
	Compose      *ComposeMode `json:"compose"`
}

type incidentDoc struct {
	SafetyCar *bool `json:"safety_car"`
	VSC       *bool `json:"vsc"`
	RedFlag   *bool `json:"red_flag"`
	Accidents *bool `json:"accidents"`
	Penalties *bool `json:"penalties"`
}

// FromJSON builds a Config by overlaying the persisted document on top
// of Default. On a parse error the defaults are returned alongside the
// error so the caller can log and continue.
func FromJSON(data []byte) (*Config, error) {
	cfg := Default()

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("parsing filter document: %w", err)
	}

	if doc.OvertakeRank != nil {
		cfg.OvertakeRank = normalizeRank(*doc.OvertakeRank, cfg.OvertakeRank)
	}
	if doc.PitRank != nil {
		cfg.PitRank = normalizeRank(*doc.PitRank, cfg.PitRank)
	}
	if doc.Teams != nil {
		cfg.Teams = append([]string{}, (*doc.Teams)...)
	}
	if doc.Incidents != nil {
		applyBool(doc.Incidents.SafetyCar, &cfg.Incidents.SafetyCar)
		applyBool(doc.Incidents.VSC, &cfg.Incidents.VSC)
		applyBool(doc.Incidents.RedFlag, &cfg.Incidents.RedFlag)
		applyBool(doc.Incidents.Accidents, &cfg.Incidents.Accidents)
		applyBool(doc.Incidents.Penalties, &cfg.Incidents.Penalties)
	}
	applyBool(doc.Milestones, &cfg.Milestones)
	applyBool(doc.SessionStart, &cfg.SessionStart)
	if doc.Compose != nil {
		switch *doc.Compose {
		case ComposeAnd, ComposeOr:
			cfg.Compose = *doc.Compose
		}
	}

	return cfg, nil
}

// ToJSON marshals the config for persistence.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

func normalizeRank(mode, fallback RankMode) RankMode {
	switch mode {
	case RankAll, RankTop5, RankTop10:
		return mode
	}
	return fallback
}

func applyBool(src *bool, dst *bool) {
	if src != nil {
		*dst = *src
	}
}
