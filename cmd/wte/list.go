package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var (
	listJSON   bool
	listStatus string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: "trip",
	Short:   "Show the itinerary in scheduled order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.Store.Load(context.Background())

		stops := snap.Stops
		if listStatus != "" {
			status, err := itinerary.ParseStatus(listStatus)
			if err != nil {
				return err
			}
			stops = snap.ByStatus(status)
		}

		if listJSON {
			return ui.JSON(struct {
				Rev   uint64           `json:"rev"`
				Stops []itinerary.Stop `json:"stops"`
			}{Rev: snap.Rev, Stops: stops})
		}

		if len(stops) == 0 {
			ui.Info("No stops yet. Add one with: wte add \"Somewhere nice\"")
			return nil
		}

		next := snap.Next()
		for _, st := range stops {
			ui.Info("%s", ui.FormatStopLine(st, next != nil && next.ID == st.ID))
		}

		fmt.Println()
		ui.Info("%d stops  planned %d  visited %d  skipped %d  total cost %s",
			len(snap.Stops), len(snap.Planned()), len(snap.Completed()),
			len(snap.Skipped()), ui.FormatMoney(snap.TotalCost()))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().StringVar(&listStatus, "status", "", "only show stops with this status")
	rootCmd.AddCommand(listCmd)
}
