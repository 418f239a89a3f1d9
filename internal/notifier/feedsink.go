package notifier

import (
	"context"
	"time"

	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/feed"
)

// FeedSink appends emitted events to the persisted bounded feed.
type FeedSink struct {
	feed    *feed.Feed
	timeout time.Duration
}

// NewFeedSink wraps a feed as a notifier sink.
func NewFeedSink(f *feed.Feed) *FeedSink {
	return &FeedSink{feed: f, timeout: 5 * time.Second}
}

func (s *FeedSink) Name() string { return "feed" }

// Notify appends the events; the write is bounded so a wedged database
// cannot stall the polling loop.
func (s *FeedSink) Notify(events []event.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.feed.Append(ctx, events...)
}
