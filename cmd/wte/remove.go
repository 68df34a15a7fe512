package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	GroupID: "trip",
	Short:   "Remove a stop from the itinerary",
	Long: `Remove a stop from the itinerary.

The stop's cached insight is dropped with it. When a remote store is
configured, the deletion is forwarded as a targeted delete.`,
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
			if errors.Is(err, itinerary.ErrAmbiguousID) {
				return err
			}
			ui.Warning("no stop matches %q, nothing changed", args[0])
			id = args[0]
		}

		title := ""
		if st := snap.Find(id); st != nil {
			title = st.Title
		}

		a.Store.Remove(ctx, id)
		if err := a.Resolver.Invalidate(id); err != nil {
			ui.Warning("failed to drop cached insight: %v", err)
		}

		if title != "" {
			ui.Success("Removed %s", title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
