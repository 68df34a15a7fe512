package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var nextJSON bool

var nextCmd = &cobra.Command{
	Use:     "next",
	GroupID: "trip",
	Short:   "Show the next planned stop and its insight",
	Long: `Show the earliest stop that is still planned, with its insight.

The insight comes from the cache when one exists. Otherwise it is
generated online, or falls back to built-in offline tips. Use
"wte insight --refresh" to force regeneration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		snap := a.Store.Load(ctx)
		next := snap.Next()
		if next == nil {
			if nextJSON {
				return ui.JSON(nil)
			}
			ui.Info("Nothing planned. The trip is done, or hasn't started.")
			return nil
		}

		ins := a.Resolver.Resolve(ctx, *next)

		if nextJSON {
			return ui.JSON(struct {
				Stop    interface{} `json:"stop"`
				Insight interface{} `json:"insight"`
				Source  string      `json:"source"`
			}{next, ins, string(ins.Source)})
		}

		ui.Info("%s", ui.Highlight(ui.FormatStopLong(*next)))
		ui.Info("%s", ui.FormatInsight(ins))
		return nil
	},
}

func init() {
	nextCmd.Flags().BoolVar(&nextJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(nextCmd)
}
