// Package config defines the application configuration and its loading.
//
// Settings layer in order of precedence: built-in defaults, then an
// optional YAML file, then F1EVENTS_* environment variables. This covers
// process-level knobs only; the notification-filter document is a
// separate persisted file owned by the storage package.
package config

import (
	"time"

	"github.com/pfrederiksen/f1-events/internal/feed"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir holds the filter document and the event-feed database.
	DataDir string `koanf:"data_dir"`

	// BaseURL points at the OpenF1 query API.
	BaseURL string `koanf:"base_url"`

	// PollIntervalMS is the polling cadence in milliseconds.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// FetchTimeoutMS bounds each upstream request in milliseconds.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// FeedCapacity bounds the persisted event feed.
	FeedCapacity int `koanf:"feed_capacity"`

	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		DataDir:        "~/.local/share/f1-events",
		BaseURL:        openf1.DefaultBaseURL,
		PollIntervalMS: 2000,
		FetchTimeoutMS: 10000,
		FeedCapacity:   feed.DefaultCapacity,
		MetricsAddr:    "",
	}
}

// PollInterval returns the polling cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// FetchTimeout returns the per-request bound as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}
