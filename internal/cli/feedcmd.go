package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/f1-events/internal/feed"
)

var (
	flagFeedLimit  int
	flagFeedSearch string
	flagFeedClear  bool
	flagFeedFormat string
)

func newFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the persisted event feed",
		RunE:  runFeed,
	}
	cmd.Flags().IntVar(&flagFeedLimit, "limit", 50, "Maximum entries to show")
	cmd.Flags().StringVar(&flagFeedSearch, "search", "", "Only show entries containing this text")
	cmd.Flags().BoolVar(&flagFeedClear, "clear", false, "Clear the feed instead of showing it")
	cmd.Flags().StringVar(&flagFeedFormat, "format", "text", "Output format: text or json")
	return cmd
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, store, err := setup()
	if err != nil {
		return err
	}

	format := OutputFormat(strings.ToLower(flagFeedFormat))
	if format != FormatText && format != FormatJSON {
		return usageErrorf("invalid format: %s (must be 'text' or 'json')", flagFeedFormat)
	}

	ctx := context.Background()
	eventFeed, err := feed.Open(ctx, filepath.Join(store.Dir(), "feed.db"), cfg.FeedCapacity)
	if err != nil {
		return fmt.Errorf("opening event feed: %w", err)
	}
	defer eventFeed.Close()

	if flagFeedClear {
		if err := eventFeed.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("Feed cleared.")
		return nil
	}

	var entries []feed.Entry
	if flagFeedSearch != "" {
		entries, err = eventFeed.Search(ctx, flagFeedSearch, flagFeedLimit)
	} else {
		entries, err = eventFeed.Recent(ctx, flagFeedLimit)
	}
	if err != nil {
		return err
	}

	return WriteFeedEntries(os.Stdout, entries, format)
}
