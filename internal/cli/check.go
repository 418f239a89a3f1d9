package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/f1-events/internal/engine"
	"github.com/pfrederiksen/f1-events/internal/event"
	"github.com/pfrederiksen/f1-events/internal/logger"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

var flagCheckFormat string

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single polling cycle and report detected events",
		Long: `Runs one polling cycle against the live API and prints the events it
produced. A fresh check has no position baseline, so overtakes only
appear on subsequent cycles of a running watch.`,
		RunE: runCheck,
	}
	cmd.Flags().StringVar(&flagCheckFormat, "format", "text", "Output format: text or json")
	return cmd
}

// captureSink collects emitted events for printing.
type captureSink struct {
	events []event.Event
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Notify(events []event.Event) error {
	s.events = append(s.events, events...)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, store, err := setup()
	if err != nil {
		return err
	}

	format := OutputFormat(strings.ToLower(flagCheckFormat))
	if format != FormatText && format != FormatJSON {
		return usageErrorf("invalid format: %s (must be 'text' or 'json')", flagCheckFormat)
	}

	filters, err := store.LoadFilters()
	if err != nil {
		logger.Error("filter document load failed, using defaults", nil, err)
	}

	capture := &captureSink{}
	eng := engine.New(
		openf1.NewWithBaseURL(cfg.BaseURL, cfg.FetchTimeout()),
		engine.WithSinks(capture),
		engine.WithFilters(filters),
		engine.WithFetchTimeout(cfg.FetchTimeout()),
	)

	if err := eng.Cycle(context.Background()); err != nil {
		return err
	}

	result := &CheckResult{
		Session: eng.Session(),
		Events:  capture.events,
		Stats:   eng.Stats(),
	}
	if err := WriteCheckResult(os.Stdout, result, format); err != nil {
		return err
	}

	if len(capture.events) > 0 {
		os.Exit(ExitEvents)
	}
	return nil
}
