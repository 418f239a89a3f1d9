package openf1

import (
	"fmt"
	"time"
)

// Session is the session-metadata record. A session key change marks a
// session boundary and resets all derived state downstream.
type Session struct {
	SessionKey  int    `json:"session_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	MeetingName string `json:"meeting_name"`
	Location    string `json:"location"`
}

func (s Session) validate() error {
	if s.SessionKey == 0 {
		return fmt.Errorf("session record missing session_key")
	}
	return nil
}

// Position is a single timestamped running-order observation. Many
// observations per driver may arrive in one payload; only the latest
// per driver is authoritative.
type Position struct {
	DriverNumber int       `json:"driver_number"`
	Position     int       `json:"position"`
	Date         time.Time `json:"date"`
}

func (p Position) validate() error {
	if p.DriverNumber <= 0 {
		return fmt.Errorf("position record missing driver_number")
	}
	if p.Position <= 0 {
		return fmt.Errorf("position record has non-positive position %d", p.Position)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("position record missing date")
	}
	return nil
}

// EntityID implements detect.Observation.
func (p Position) EntityID() int { return p.DriverNumber }

// ObservedAt implements detect.Observation.
func (p Position) ObservedAt() time.Time { return p.Date }

// RaceControl is a free-text control-room message. The (Date, Message)
// pair is its identity for dedup purposes.
type RaceControl struct {
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

func (r RaceControl) validate() error {
	if r.Message == "" {
		return fmt.Errorf("race control record missing message")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("race control record missing date")
	}
	return nil
}

// Pit is a pit-stop record. PitDuration is null while the stop is still
// in progress and for some historical data.
type Pit struct {
	DriverNumber int       `json:"driver_number"`
	LapNumber    int       `json:"lap_number"`
	PitDuration  *float64  `json:"pit_duration"`
	Date         time.Time `json:"date"`
}

func (p Pit) validate() error {
	if p.DriverNumber <= 0 {
		return fmt.Errorf("pit record missing driver_number")
	}
	if p.Date.IsZero() {
		return fmt.Errorf("pit record missing date")
	}
	return nil
}

// Lap is a per-driver lap record; only the lap number is consumed, to
// track the current lead lap.
type Lap struct {
	DriverNumber int `json:"driver_number"`
	LapNumber    int `json:"lap_number"`
}

func (l Lap) validate() error {
	if l.LapNumber < 0 {
		return fmt.Errorf("lap record has negative lap_number %d", l.LapNumber)
	}
	return nil
}

// Driver is a roster entry resolved once per session.
type Driver struct {
	DriverNumber int    `json:"driver_number"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}

func (d Driver) validate() error {
	if d.DriverNumber <= 0 {
		return fmt.Errorf("driver record missing driver_number")
	}
	return nil
}
