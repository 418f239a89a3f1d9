package notifier

import (
	"fmt"

	"github.com/pfrederiksen/f1-events/internal/event"
)

// formatPost renders an event as a short social-media post.
func formatPost(evt event.Event) string {
	post := fmt.Sprintf("🏁 F1: %s\n\n%s\n\n#F1", evt.Title, evt.Message)

	// Twitter limit is 280 characters.
	if len(post) > 280 {
		post = post[:277] + "..."
	}
	return post
}

// formatLine renders an event as a single plain-text line.
func formatLine(evt event.Event) string {
	return fmt.Sprintf("F1 %s: %s", evt.Title, evt.Message)
}
