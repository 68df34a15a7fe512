package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var (
	cfgFile      string
	forceOffline bool
)

var rootCmd = &cobra.Command{
	Use:   "wte",
	Short: "Local-first trip itinerary tracker",
	Long: `wte - Web Traveling Eazy, a local-first trip itinerary tracker.

Every change lands in the on-device database first, so the itinerary works
on a plane or behind a dead hotel WiFi. When a remote store is configured
and reachable, changes sync across devices in the background.

Stop insights (costs, weather, what to see) resolve cache-first: a cached
answer is served as-is, offline you get built-in heuristics, and online
the answer is generated and cached for the next time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(ui.Setup)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&forceOffline, "offline", false, "skip all network access for this invocation")

	rootCmd.AddGroup(
		&cobra.Group{ID: "trip", Title: "Trip Commands:"},
		&cobra.Group{ID: "insight", Title: "Insight Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}
