package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var doneCmd = &cobra.Command{
	Use:     "done <id>",
	GroupID: "trip",
	Short:   "Mark a stop as visited",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args[0], itinerary.StatusVisited)
	},
}

var skipCmd = &cobra.Command{
	Use:     "skip <id>",
	GroupID: "trip",
	Short:   "Skip a stop without visiting it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args[0], itinerary.StatusSkipped)
	},
}

var reopenCmd = &cobra.Command{
	Use:     "reopen <id>",
	GroupID: "trip",
	Short:   "Put a visited or skipped stop back on the plan",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args[0], itinerary.StatusPlanned)
	},
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	GroupID: "trip",
	Short:   "Flip a stop between planned and visited",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Empty target means toggle in the store.
		return runStatusChange(args[0], "")
	},
}

// runStatusChange resolves the id argument and applies the transition.
// An id that matches nothing warns and still runs the persist cycle, so
// the replicas re-converge; an ambiguous prefix is an error.
func runStatusChange(idArg string, target itinerary.Status) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	a.Store.Load(ctx)

	id, err := a.Store.ResolveID(idArg)
	if err != nil {
		if errors.Is(err, itinerary.ErrAmbiguousID) {
			return err
		}
		ui.Warning("no stop matches %q, nothing changed", idArg)
		id = idArg
	}

	snap, err := a.Store.SetStatus(ctx, id, target)
	if err != nil {
		return err
	}

	if st := snap.Find(id); st != nil {
		ui.Success("%s is now %s", st.Title, st.Status)
		if next := snap.Next(); next != nil && next.ID != st.ID {
			ui.Info("Next up: %s", ui.FormatStopLine(*next, true))
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(toggleCmd)
}
