package notifier

import (
	"fmt"

	"github.com/pfrederiksen/f1-events/internal/event"
)

// DryRunNotifier prints what would be delivered without posting anywhere.
type DryRunNotifier struct{}

// NewDryRunNotifier creates a new dry-run notifier.
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

func (n *DryRunNotifier) Name() string { return "dry-run" }

// Notify prints the notifications that would be sent.
func (n *DryRunNotifier) Notify(events []event.Event) error {
	for i, evt := range events {
		fmt.Printf("--- Notification %d/%d ---\n", i+1, len(events))
		fmt.Println(formatLine(evt))
	}
	return nil
}
