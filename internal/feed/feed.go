// Package feed persists a bounded append-only feed of emitted race
// events. Once the feed reaches capacity the oldest entries are pruned,
// mirroring the fixed-size event table in the UI.
package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/f1-events/internal/event"
)

// DefaultCapacity matches the UI's event-table limit.
const DefaultCapacity = 200

// ErrNotFound is returned when an entry lookup misses.
var ErrNotFound = errors.New("feed entry not found")

// Entry is one persisted feed row.
type Entry struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed is a sqlite-backed bounded event feed.
type Feed struct {
	db       *sql.DB
	capacity int
}

const schema = `
CREATE TABLE IF NOT EXISTS feed_entries (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feed_entries_created_at ON feed_entries(created_at);
`

// Open opens (creating if needed) the feed database at path. Capacity
// values below 1 fall back to DefaultCapacity.
func Open(ctx context.Context, path string, capacity int) (*Feed, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating feed dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening feed database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging feed database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating feed schema: %w", err)
	}

	return &Feed{db: db, capacity: capacity}, nil
}

// Close releases the underlying database.
func (f *Feed) Close() error {
	if f == nil || f.db == nil {
		return nil
	}
	return f.db.Close()
}

// Append inserts events in order and prunes the oldest entries past
// capacity, all in one transaction.
func (f *Feed) Append(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning feed tx: %w", err)
	}
	defer tx.Rollback()

	for _, evt := range events {
		_, err := tx.ExecContext(ctx, `
INSERT INTO feed_entries(id, category, title, message, created_at)
VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), string(evt.Category), evt.Title, evt.Message,
			evt.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("inserting feed entry: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
DELETE FROM feed_entries WHERE id NOT IN (
	SELECT id FROM feed_entries ORDER BY created_at DESC, rowid DESC LIMIT ?
)`, f.capacity)
	if err != nil {
		return fmt.Errorf("pruning feed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing feed tx: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (f *Feed) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 || limit > f.capacity {
		limit = f.capacity
	}
	rows, err := f.db.QueryContext(ctx, `
SELECT id, category, title, message, created_at
FROM feed_entries ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search returns entries whose title or message contains term,
// case-insensitively, newest first.
func (f *Feed) Search(ctx context.Context, term string, limit int) ([]Entry, error) {
	if limit < 1 || limit > f.capacity {
		limit = f.capacity
	}
	pattern := "%" + term + "%"
	rows, err := f.db.QueryContext(ctx, `
SELECT id, category, title, message, created_at
FROM feed_entries
WHERE title LIKE ? OR message LIKE ?
ORDER BY created_at DESC, rowid DESC LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching feed: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Get returns a single entry by ID.
func (f *Feed) Get(ctx context.Context, id string) (Entry, error) {
	row := f.db.QueryRowContext(ctx, `
SELECT id, category, title, message, created_at
FROM feed_entries WHERE id = ?`, id)

	var e Entry
	var created string
	if err := row.Scan(&e.ID, &e.Category, &e.Title, &e.Message, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("scanning feed entry: %w", err)
	}
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
	return e, nil
}

// Len returns the current number of entries.
func (f *Feed) Len(ctx context.Context) (int, error) {
	var n int
	if err := f.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feed_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting feed entries: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (f *Feed) Clear(ctx context.Context) error {
	if _, err := f.db.ExecContext(ctx, `DELETE FROM feed_entries`); err != nil {
		return fmt.Errorf("clearing feed: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Category, &e.Title, &e.Message, &created); err != nil {
			return nil, fmt.Errorf("scanning feed entry: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feed entries: %w", err)
	}
	return entries, nil
}
