package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/migrate"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "sync",
	Short:   "Export the itinerary to JSON or YAML",
	Long: `Export the itinerary to a portable JSON or YAML document.

Without --output the document goes to stdout. With --output the format is
taken from the file extension unless --format overrides it.`,
	Example: `  wte export                      # JSON to stdout
  wte export --format yaml        # YAML to stdout
  wte export -o trip.yaml         # YAML file, format from extension
  wte export -o backup.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{Quiet: true})
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.Store.Load(context.Background())
		doc := migrate.FromSnapshot(snap)

		raw := exportFormat
		if raw == "" && exportOutput != "" {
			raw = strings.TrimPrefix(filepath.Ext(exportOutput), ".")
		}
		format, err := migrate.ParseFormat(raw)
		if err != nil {
			return err
		}

		if exportOutput == "" {
			return migrate.Export(os.Stdout, doc, format)
		}
		if err := migrate.ExportFile(exportOutput, doc, format); err != nil {
			return err
		}
		ui.Success("Exported %d stop(s) to %s", len(doc.Stops), exportOutput)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "sync",
	Short:   "Import stops from a JSON or YAML export",
	Long: `Import stops from a document produced by wte export.

Records carrying an ID update the matching stop; the rest are created. An
invalid record rejects the whole file, so a half-imported itinerary cannot
happen.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		a.Store.Load(ctx)

		result, err := migrate.Import(ctx, a.Store, args[0])
		if err != nil {
			return err
		}

		ui.Success("Imported %s: %d created, %d updated", args[0], result.Created, result.Updated)
		if next := result.Snapshot.Next(); next != nil {
			fmt.Println("Next up:", ui.FormatStopLine(*next, true))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format: json or yaml (default json, or the --output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
