package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/f1-events/internal/engine"
	"github.com/pfrederiksen/f1-events/internal/feed"
	"github.com/pfrederiksen/f1-events/internal/logger"
	"github.com/pfrederiksen/f1-events/internal/notifier"
	"github.com/pfrederiksen/f1-events/internal/openf1"
)

var (
	flagWatchTwitter  bool
	flagWatchTelegram bool
	flagWatchDryRun   bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for race events until interrupted",
		RunE:  runWatch,
	}
	cmd.Flags().BoolVar(&flagWatchTwitter, "twitter", false, "Post events to Twitter (env credentials)")
	cmd.Flags().BoolVar(&flagWatchTelegram, "telegram", false, "Send events to a Telegram chat (env credentials)")
	cmd.Flags().BoolVar(&flagWatchDryRun, "dry-run", false, "Print notifications instead of delivering them")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, store, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eventFeed, err := feed.Open(ctx, filepath.Join(store.Dir(), "feed.db"), cfg.FeedCapacity)
	if err != nil {
		return fmt.Errorf("opening event feed: %w", err)
	}
	defer eventFeed.Close()

	sinks := []notifier.Notifier{notifier.NewFeedSink(eventFeed)}
	if flagWatchDryRun || (!flagWatchTwitter && !flagWatchTelegram) {
		sinks = append(sinks, notifier.NewDryRunNotifier())
	}
	if flagWatchTwitter {
		tw, err := notifier.NewTwitterNotifier()
		if err != nil {
			return fmt.Errorf("initializing twitter notifier: %w", err)
		}
		sinks = append(sinks, tw)
	}
	if flagWatchTelegram {
		tg, err := notifier.NewTelegramNotifier()
		if err != nil {
			return fmt.Errorf("initializing telegram notifier: %w", err)
		}
		sinks = append(sinks, tg)
	}

	filters, err := store.LoadFilters()
	if err != nil {
		logger.Error("filter document load failed, using defaults", nil, err)
	}

	eng := engine.New(
		openf1.NewWithBaseURL(cfg.BaseURL, cfg.FetchTimeout()),
		engine.WithSinks(sinks...),
		engine.WithFilters(filters),
		engine.WithFetchTimeout(cfg.FetchTimeout()),
		engine.WithStatusFunc(func(s engine.Status) {
			if s.Connected {
				logger.Info("connected", nil)
			} else {
				logger.Warn("connection degraded", logger.Fields{"reason": s.Reason})
			}
		}),
	)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", eng.Metrics().Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			logger.Info("serving metrics", logger.Fields{"addr": cfg.MetricsAddr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", nil, err)
			}
		}()
		defer srv.Close()
	}

	if err := eng.Run(ctx, cfg.PollInterval()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
