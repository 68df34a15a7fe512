package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var (
	insightRefresh bool
	insightJSON    bool
)

var insightCmd = &cobra.Command{
	Use:     "insight <id>",
	GroupID: "insight",
	Short:   "Show travel advice for a stop",
	Long: `Show travel advice for a stop: cost expectations, weather, what to
see, and practical tips.

Resolution is cache-first. A cached answer is returned as-is, without
expiry. On a miss, the answer is generated online (and cached), or built
from offline heuristics when the network or API key is missing. Offline
answers are never cached, so the next online run upgrades them.

--refresh drops the cached answer first. Offline, the refresh falls back
to heuristics but keeps the old cached answer in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		snap := a.Store.Load(ctx)

		id, err := a.Store.ResolveID(args[0])
		if err != nil {
			return err
		}
		stop := snap.Find(id)
		if stop == nil {
			return fmt.Errorf("stop %s not found", ui.ShortID(id))
		}

		var ins insight.Insight
		if insightRefresh {
			ins = a.Resolver.Refresh(ctx, *stop)
		} else {
			ins = a.Resolver.Resolve(ctx, *stop)
		}

		if insightJSON {
			return ui.JSON(struct {
				StopID          string    `json:"stop_id"`
				Title           string    `json:"title"`
				Costs           string    `json:"costs"`
				Weather         string    `json:"weather"`
				Recommendations string    `json:"recommendations"`
				Tips            string    `json:"tips"`
				GeneratedAt     time.Time `json:"generated_at"`
				Source          string    `json:"source"`
			}{
				StopID:          ins.StopID,
				Title:           ins.Title,
				Costs:           string(ins.Costs),
				Weather:         string(ins.Weather),
				Recommendations: string(ins.Recommendations),
				Tips:            string(ins.Tips),
				GeneratedAt:     ins.GeneratedAt,
				Source:          string(ins.Source),
			})
		}

		ui.Info("%s", ui.FormatInsight(ins))
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: "insight",
	Short:   "Manage the insight cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop cached insights for stops that no longer exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.Store.Load(context.Background())
		ids := make([]string, 0, len(snap.Stops))
		for _, st := range snap.Stops {
			ids = append(ids, st.ID)
		}

		removed, err := a.Resolver.Prune(ids)
		if err != nil {
			return err
		}
		ui.Success("Pruned %d stale insight(s)", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached insight",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.Resolver.Clear()
		if err != nil {
			return err
		}
		ui.Success("Cleared %d cached insight(s)", removed)
		return nil
	},
}

func init() {
	insightCmd.Flags().BoolVar(&insightRefresh, "refresh", false, "drop the cached answer and resolve again")
	insightCmd.Flags().BoolVar(&insightJSON, "json", false, "output as JSON")
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(insightCmd)
	rootCmd.AddCommand(cacheCmd)
}
