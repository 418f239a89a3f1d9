package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/f1-events/internal/detect"
	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/feed"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// OutputFormat selects the output rendering.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// CheckResult is the output of a single polling cycle.
type CheckResult struct {
	Session *openf1.Session `json:"session,omitempty"`
	Events  []event.Event   `json:"events"`
	Stats   detect.Stats    `json:"stats"`
}

// WriteCheckResult renders a check result.
func WriteCheckResult(w io.Writer, result *CheckResult, format OutputFormat) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Session == nil {
		fmt.Fprintln(w, "No active session.")
		return nil
	}
	fmt.Fprintf(w, "Session: %s - %s (%s)\n",
		result.Session.MeetingName, result.Session.SessionName, result.Session.SessionType)

	if len(result.Events) == 0 {
		fmt.Fprintln(w, "No new events.")
	} else {
		fmt.Fprintf(w, "%d new event(s):\n", len(result.Events))
		for _, evt := range result.Events {
			fmt.Fprintf(w, "  %s\n", evt.String())
		}
	}

	fmt.Fprintf(w, "Stats: %d overtakes, %d pit stops, %d safety cars",
		result.Stats.Overtakes, result.Stats.PitStops, result.Stats.SafetyCars)
	if result.Stats.FastestPitStop != nil {
		fmt.Fprintf(w, ", fastest stop %.2fs", *result.Stats.FastestPitStop)
	}
	fmt.Fprintln(w)
	return nil
}

// WriteFeedEntries renders feed entries, newest first.
func WriteFeedEntries(w io.Writer, entries []feed.Entry, format OutputFormat) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No events yet. Waiting for race activity...")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-12s  %s\n", e.Timestamp.Local().Format("15:04:05"), e.Title, e.Message)
	}
	return nil
}

// usageErrorf formats a user-facing argument error.
func usageErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
