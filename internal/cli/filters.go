package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/f1-events/internal/filter"
	"github.com/pfrederiksen/f1-events/internal/logger"
	"github.com/pfrederiksen/f1-events/internal/teams"
)

var (
	flagFilterOvertakeRank string
	flagFilterPitRank      string
	flagFilterTeams        string
	flagFilterIncidents    string
	flagFilterMilestones   bool
	flagFilterSession      bool
	flagFilterCompose      string
)

func newFiltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Show or update the notification filters",
	}
	cmd.AddCommand(newFiltersShowCmd())
	cmd.AddCommand(newFiltersSetCmd())
	return cmd
}

func newFiltersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := setup()
			if err != nil {
				return err
			}
			cfg, err := store.LoadFilters()
			if err != nil {
				logger.Error("filter document load failed, using defaults", nil, err)
			}
			fmt.Println(cfg.String())
			fmt.Printf("Known teams: %s\n", strings.Join(teams.Names(), ", "))
			return nil
		},
	}
}

func newFiltersSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update and persist the notification filters",
		RunE:  runFiltersSet,
	}
	cmd.Flags().StringVar(&flagFilterOvertakeRank, "overtake-rank", "", "Overtake rank tier: all, top5 or top10")
	cmd.Flags().StringVar(&flagFilterPitRank, "pit-rank", "", "Pit-stop rank tier: all, top5 or top10")
	cmd.Flags().StringVar(&flagFilterTeams, "teams", "", "Comma-separated team allowlist, empty clears it")
	cmd.Flags().StringVar(&flagFilterIncidents, "incidents", "", "Comma-separated enabled incident categories (safety_car, vsc, red_flag, accidents, penalties)")
	cmd.Flags().BoolVar(&flagFilterMilestones, "milestones", true, "Enable lap milestone reminders")
	cmd.Flags().BoolVar(&flagFilterSession, "session-start", true, "Enable session-start notifications")
	cmd.Flags().StringVar(&flagFilterCompose, "compose", "", "Predicate composition: and or or")
	return cmd
}

func runFiltersSet(cmd *cobra.Command, args []string) error {
	_, store, err := setup()
	if err != nil {
		return err
	}
	cfg, err := store.LoadFilters()
	if err != nil {
		logger.Error("filter document load failed, using defaults", nil, err)
	}

	if flagFilterOvertakeRank != "" {
		mode, err := parseRankMode(flagFilterOvertakeRank)
		if err != nil {
			return err
		}
		cfg.OvertakeRank = mode
	}
	if flagFilterPitRank != "" {
		mode, err := parseRankMode(flagFilterPitRank)
		if err != nil {
			return err
		}
		cfg.PitRank = mode
	}
	if cmd.Flags().Changed("teams") {
		cfg.Teams = splitList(flagFilterTeams)
		for _, team := range cfg.Teams {
			if !teams.IsKnown(team) {
				logger.Warn("team not in the known table, matching on the wire name only", logger.Fields{"team": team})
			}
		}
	}
	if cmd.Flags().Changed("incidents") {
		cfg.Incidents = parseIncidents(splitList(flagFilterIncidents))
	}
	if cmd.Flags().Changed("milestones") {
		cfg.Milestones = flagFilterMilestones
	}
	if cmd.Flags().Changed("session-start") {
		cfg.SessionStart = flagFilterSession
	}
	if flagFilterCompose != "" {
		switch filter.ComposeMode(strings.ToLower(flagFilterCompose)) {
		case filter.ComposeAnd:
			cfg.Compose = filter.ComposeAnd
		case filter.ComposeOr:
			cfg.Compose = filter.ComposeOr
		default:
			return usageErrorf("invalid compose mode: %s (must be 'and' or 'or')", flagFilterCompose)
		}
	}

	if err := store.SaveFilters(cfg); err != nil {
		return err
	}
	fmt.Println(cfg.String())
	return nil
}

func parseRankMode(s string) (filter.RankMode, error) {
	switch filter.RankMode(strings.ToLower(s)) {
	case filter.RankAll:
		return filter.RankAll, nil
	case filter.RankTop5:
		return filter.RankTop5, nil
	case filter.RankTop10:
		return filter.RankTop10, nil
	}
	return "", usageErrorf("invalid rank mode: %s (must be 'all', 'top5' or 'top10')", s)
}

func parseIncidents(enabled []string) filter.IncidentToggles {
	var t filter.IncidentToggles
	for _, name := range enabled {
		switch strings.ToLower(name) {
		case "safety_car":
			t.SafetyCar = true
		case "vsc":
			t.VSC = true
		case "red_flag":
			t.RedFlag = true
		case "accidents":
			t.Accidents = true
		case "penalties":
			t.Penalties = true
		default:
			logger.Warn("unknown incident category ignored", logger.Fields{"category": name})
		}
	}
	return t
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
