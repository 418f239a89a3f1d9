package feed

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/f1-events/internal/event"
)

func openTestFeed(t *testing.T, capacity int) *Feed {
	t.Helper()
	f, err := Open(context.Background(), filepath.Join(t.TempDir(), "feed.db"), capacity)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func testEvent(i int, at time.Time) event.Event {
	return event.Event{
		Category:  event.CategoryOvertake,
		Title:     "Overtake",
		Message:   fmt.Sprintf("driver moved to P%d", i),
		Timestamp: at,
	}
}

func TestAppendAndRecent(t *testing.T) {
	f := openTestFeed(t, 10)
	ctx := context.Background()
	base := time.Date(2025, 5, 4, 14, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		if err := f.Append(ctx, testEvent(i, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := f.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Message != "driver moved to P3" || entries[2].Message != "driver moved to P1" {
		t.Errorf("wrong order: %q ... %q", entries[0].Message, entries[2].Message)
	}
	if entries[0].Category != string(event.CategoryOvertake) {
		t.Errorf("category = %q", entries[0].Category)
	}
	if !entries[0].Timestamp.Equal(base.Add(3 * time.Second)) {
		t.Errorf("timestamp = %v", entries[0].Timestamp)
	}
}

func TestAppendPrunesPastCapacity(t *testing.T) {
	f := openTestFeed(t, 5)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 1; i <= 8; i++ {
		if err := f.Append(ctx, testEvent(i, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	n, err := f.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 5 {
		t.Fatalf("feed holds %d entries, want capacity 5", n)
	}

	entries, err := f.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if entries[0].Message != "driver moved to P8" {
		t.Errorf("newest = %q, want P8", entries[0].Message)
	}
	if entries[4].Message != "driver moved to P4" {
		t.Errorf("oldest survivor = %q, want P4", entries[4].Message)
	}
}

func TestSearch(t *testing.T) {
	f := openTestFeed(t, 10)
	ctx := context.Background()
	now := time.Now().UTC()

	events := []event.Event{
		{Category: event.CategoryOvertake, Title: "Overtake", Message: "VER moved from P2 to P1", Timestamp: now},
		{Category: event.CategoryPitStop, Title: "Pit Stop", Message: "HAM (P4) pitted on Lap 12", Timestamp: now.Add(time.Second)},
		{Category: event.CategoryRedFlag, Title: "Incident", Message: "RED FLAG", Timestamp: now.Add(2 * time.Second)},
	}
	if err := f.Append(ctx, events...); err != nil {
		t.Fatalf("Append: %v", err)
	}

	tests := []struct {
		name string
		term string
		want int
	}{
		{"matches message", "HAM", 1},
		{"matches title", "Incident", 1},
		{"case insensitive", "red flag", 1},
		{"no matches", "gravel trap", 0},
		{"empty term matches everything", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Search(ctx, tt.term, 10)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) returned %d entries, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}

func TestGet(t *testing.T) {
	f := openTestFeed(t, 10)
	ctx := context.Background()

	if err := f.Append(ctx, testEvent(1, time.Now().UTC())); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, err := f.Recent(ctx, 1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Recent: %v (%d entries)", err, len(entries))
	}

	got, err := f.Get(ctx, entries[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Message != entries[0].Message {
		t.Errorf("Get returned %q, want %q", got.Message, entries[0].Message)
	}

	if _, err := f.Get(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(miss) = %v, want ErrNotFound", err)
	}
}

func TestClear(t *testing.T) {
	f := openTestFeed(t, 10)
	ctx := context.Background()

	if err := f.Append(ctx, testEvent(1, time.Now().UTC()), testEvent(2, time.Now().UTC())); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := f.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	n, err := f.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 0 {
		t.Errorf("feed holds %d entries after Clear", n)
	}
}

func TestAppendNothingIsNoOp(t *testing.T) {
	f := openTestFeed(t, 10)
	if err := f.Append(context.Background()); err != nil {
		t.Fatalf("empty Append: %v", err)
	}
}

func TestOpenDefaultsCapacity(t *testing.T) {
	f := openTestFeed(t, 0)
	if f.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", f.capacity, DefaultCapacity)
	}
}
