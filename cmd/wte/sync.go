package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Manual remote synchronization",
	Long: `Manual remote synchronization.

Normal mutations already sync in the background; these commands force a
full push or pull, or report where things stand.`,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the full local collection to the remote store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		snap := a.Store.Load(ctx)

		if err := a.Store.FlushRemote(ctx); err != nil {
			if errors.Is(err, itinerary.ErrNoRemote) {
				return errors.New("no remote store configured (set remote.driver and remote.url)")
			}
			return err
		}
		ui.Success("Pushed %d stop(s)", len(snap.Stops))
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace local state with the remote collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.Store.PullRemote(context.Background())
		if err != nil {
			if errors.Is(err, itinerary.ErrNoRemote) {
				return errors.New("no remote store configured (set remote.driver and remote.url)")
			}
			return err
		}
		ui.Success("Pulled %d stop(s)", len(snap.Stops))
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and remote configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.Store.Load(context.Background())

		ui.Info("Local database: %s (%d stops, rev %d)",
			a.Config.LocalDBPath(), len(snap.Stops), snap.Rev)

		if !a.Store.HasRemote() {
			if a.Config.Remote.Driver != "" {
				ui.Warning("remote %q configured but unavailable", a.Config.Remote.Driver)
			} else {
				ui.Info("Remote: not configured (local-only)")
			}
			return nil
		}

		ui.Info("Remote: %s (%s)", a.Config.Remote.Driver, a.Config.Remote.URL)
		if a.Store.Online() {
			ui.Success("Network: online")
		} else {
			ui.Warning("network: offline, changes stay local until a manual push")
		}
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}
