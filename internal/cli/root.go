// Package cli wires the f1-events commands: the polling daemon, a
// single-cycle check, the persisted event feed, and filter management.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/f1-events/internal/config"
	"github.com/pfrederiksen/f1-events/internal/logger"
	"github.com/pfrederiksen/f1-events/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitEvents  = 2
)

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "f1-events",
		Short: "Live F1 race event notifier",
		Long: `Polls the OpenF1 telemetry API, detects race events (overtakes,
incidents, pit stops, lap milestones), deduplicates them across polling
cycles and fans them out to notification sinks.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (or env: F1EVENTS_CONFIG)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Override the data directory")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newFeedCmd())
	cmd.AddCommand(newFiltersCmd())

	return cmd
}

// setup loads the app config and opens storage, applying the shared
// flags. A broken config file falls back to defaults with a logged
// error rather than refusing to start.
func setup() (*config.Config, *storage.Storage, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		logger.Error("config load failed, using defaults", nil, err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	return cfg, store, nil
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
