package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/daemon"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var (
	watchPullInterval time.Duration
	watchNoPrefetch   bool
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "system",
	Short:   "Watch the itinerary in the foreground",
	Long: `Watch the itinerary in the foreground.

Reloads when another process writes the local database, periodically pulls
the remote collection, and prefetches the insight for whichever stop is
next. Useful on a second screen during a trip, or for debugging sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.Store.Load(context.Background())

		dcfg := daemon.DefaultConfig()
		dcfg.PullInterval = watchPullInterval
		dcfg.Prefetch = !watchNoPrefetch
		dcfg.FlushOnReconnect = a.Config.Sync.FlushOnReconnect
		dcfg.Logger = a.Sink.Logger("daemon")
		dcfg.OnInsight = func(ins insight.Insight) {
			fmt.Println()
			fmt.Println(ui.FormatInsight(ins))
		}

		var connectivity daemon.Connectivity
		if a.Monitor != nil {
			connectivity = a.Monitor
		}

		d, err := daemon.New(a.Store, a.Resolver, connectivity, a.Local.Path(), dcfg)
		if err != nil {
			return err
		}

		a.Store.Subscribe(printWatchUpdate)

		fmt.Printf("Watching %s\n", a.Local.Path())
		printWatchUpdate(snap)
		fmt.Println("\nPress Ctrl+C to stop")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return d.Start(ctx)
	},
}

// printWatchUpdate prints a short summary each time the collection changes.
func printWatchUpdate(snap itinerary.Snapshot) {
	fmt.Printf("rev %d: %d stop(s)\n", snap.Rev, len(snap.Stops))
	if next := snap.Next(); next != nil {
		fmt.Println(ui.FormatStopLine(*next, true))
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchPullInterval, "pull-interval", 5*time.Minute, "how often to pull the remote collection (0 disables)")
	watchCmd.Flags().BoolVar(&watchNoPrefetch, "no-prefetch", false, "disable insight prefetch for the next stop")
	rootCmd.AddCommand(watchCmd)
}
