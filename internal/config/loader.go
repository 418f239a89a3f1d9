package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file, and
// environment variables.
//
// Order of precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML) at path, or $F1EVENTS_CONFIG when path is empty
//  3. env (prefix F1EVENTS_, e.g. F1EVENTS_POLL_INTERVAL_MS)
//
// On any error the defaults are returned alongside the error so the
// caller can log and keep running.
func Load(path string) (*Config, error) {
	cfg := *Default()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("F1EVENTS_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Default(), fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("F1EVENTS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "f1events_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Default(), fmt.Errorf("loading env config: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Default(), fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return Default(), err
	}
	return &cfg, nil
}

func validate(c *Config) error {
	if c.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	if c.PollIntervalMS < 500 {
		return fmt.Errorf("poll_interval_ms %d is below the 500ms floor", c.PollIntervalMS)
	}
	if c.FetchTimeoutMS <= 0 {
		return errors.New("fetch_timeout_ms must be positive")
	}
	if c.FeedCapacity < 1 {
		return errors.New("feed_capacity must be at least 1")
	}
	return nil
}
