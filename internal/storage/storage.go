package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/f1-events/internal/filter"
)

const filtersFile = "filters.json"

// Storage persists the notification-filter document under a data
// directory.
type Storage struct {
	dataDir string
}

// New creates a Storage instance, expanding ~ and creating the data
// directory if needed.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// Dir returns the resolved data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// LoadFilters loads the persisted filter document, merged field-by-field
// over defaults. A missing file yields the defaults. A malformed file
// also yields the defaults, with the parse error returned so the caller
// can log it and continue.
func (s *Storage) LoadFilters() (*filter.Config, error) {
	path := filepath.Join(s.dataDir, filtersFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return filter.Default(), nil
		}
		return filter.Default(), fmt.Errorf("reading filter document: %w", err)
	}

	return filter.FromJSON(data)
}

// SaveFilters writes the filter document to disk.
func (s *Storage) SaveFilters(cfg *filter.Config) error {
	data, err := cfg.ToJSON()
	if err != nil {
		return fmt.Errorf("encoding filter document: %w", err)
	}

	path := filepath.Join(s.dataDir, filtersFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing filter document: %w", err)
	}
	return nil
}
