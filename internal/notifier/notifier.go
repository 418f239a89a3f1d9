// Package notifier provides the downstream sinks race events are fanned
// out to. Delivery is best-effort: a failing sink is logged by the
// engine and never aborts a polling cycle.
package notifier

import (
	"github.com/pfrederiksen/f1-events/internal/event"
)

// Notifier consumes a batch of emitted race events.
type Notifier interface {
	// Name identifies the sink in logs.
	Name() string
	// Notify delivers the events.
	Notify(events []event.Event) error
}
