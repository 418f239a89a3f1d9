package event

import (
	"fmt"
	"time"
)

// Category identifies the kind of race event.
type Category string

const (
	CategorySessionStart Category = "session_start"
	CategoryOvertake     Category = "overtake"
	CategorySafetyCar    Category = "safety_car"
	CategoryVSC          Category = "vsc"
	CategoryRedFlag      Category = "red_flag"
	CategoryAccident     Category = "accident"
	CategoryPenalty      Category = "penalty"
	CategoryPitStop      Category = "pit_stop"
	CategoryMilestone    Category = "milestone"
)

// IncidentCategories lists the race-control categories in classification
// priority order. Earlier entries win when a message matches several.
var IncidentCategories = []Category{
	CategorySafetyCar,
	CategoryVSC,
	CategoryRedFlag,
	CategoryAccident,
	CategoryPenalty,
}

// Event is a single notification-worthy occurrence derived from telemetry.
type Event struct {
	Category  Category  `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates an Event stamped with the current UTC time.
func New(category Category, title, message string) Event {
	return Event{
		Category:  category,
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// IsIncident reports whether the category is a classified race-control
// incident, as opposed to a position, pit or scheduling event.
func (c Category) IsIncident() bool {
	for _, ic := range IncidentCategories {
		if c == ic {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable label used in notifications
// and the event feed.
func (c Category) DisplayName() string {
	switch c {
	case CategorySessionStart:
		return "Session Start"
	case CategoryOvertake:
		return "Overtake"
	case CategorySafetyCar:
		return "Safety Car"
	case CategoryVSC:
		return "VSC"
	case CategoryRedFlag:
		return "Red Flag"
	case CategoryAccident:
		return "Incident"
	case CategoryPenalty:
		return "Penalty"
	case CategoryPitStop:
		return "Pit Stop"
	case CategoryMilestone:
		return "Top 3 Update"
	default:
		return string(c)
	}
}

// String renders the event as a single feed line.
func (e Event) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Timestamp.Format("15:04:05"), e.Title, e.Message)
}
