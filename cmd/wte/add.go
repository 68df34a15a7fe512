package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/ui"
)

var (
	addTitle   string
	addAddress string
	addAt      string
	addNotes   string
	addCost    string
)

var addCmd = &cobra.Command{
	Use:     "add [title]",
	GroupID: "trip",
	Short:   "Add a stop to the itinerary",
	Long: `Add a stop to the itinerary.

The scheduled time accepts natural language ("tomorrow at 9am", "next
friday") as well as dates like "2026-03-14 09:00". Cost is free-form:
anything that isn't a non-negative number is recorded as 0.

Without arguments on a terminal, an interactive form opens instead.`,
	Example: `  wte add "Tanah Lot Temple" -a "Beraban, Tabanan" -t "saturday 5pm" -c 75000
  wte add "Warung Made" -a "Jalan Pantai, Canggu" -t "2026-03-15 12:30" -n "cash only"
  wte add`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		a.Store.Load(ctx)

		title := addTitle
		if title == "" {
			title = strings.Join(args, " ")
		}
		in := itinerary.NewStop{
			Title:   title,
			Address: addAddress,
			Notes:   addNotes,
			Cost:    itinerary.ParseCost(addCost),
		}

		if strings.TrimSpace(in.Title) == "" {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("title is required (or run interactively on a terminal)")
			}
			filled, err := addForm()
			if err != nil {
				return err
			}
			in = filled
		} else {
			at, err := parseWhen(addAt)
			if err != nil {
				return err
			}
			in.At = at
		}

		snap, stop, err := a.Store.Add(ctx, in)
		if err != nil {
			return err
		}

		ui.Success("Added %s (%s)", stop.Title, ui.ShortID(stop.ID))
		ui.Info("%s", ui.FormatStopLine(stop, isNextStop(snap, stop.ID)))
		return nil
	},
}

// addForm collects the stop interactively.
func addForm() (itinerary.NewStop, error) {
	var title, address, at, notes, cost string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Tanah Lot Temple").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Address").
				Placeholder("Beraban, Tabanan, Bali").
				Value(&address).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("address is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("When").
				Placeholder("saturday at 5pm").
				Value(&at).
				Validate(func(s string) error {
					_, err := parseWhen(s)
					return err
				}),
			huh.NewInput().
				Title("Cost estimate").
				Placeholder("75000 (blank for none)").
				Value(&cost),
			huh.NewText().
				Title("Notes").
				Placeholder("optional").
				Lines(3).
				Value(&notes),
		).Title("New Stop"),
	)
	if err := form.Run(); err != nil {
		return itinerary.NewStop{}, err
	}

	parsedAt, err := parseWhen(at)
	if err != nil {
		return itinerary.NewStop{}, err
	}
	return itinerary.NewStop{
		Title:   title,
		Address: address,
		At:      parsedAt,
		Notes:   notes,
		Cost:    itinerary.ParseCost(cost),
	}, nil
}

// whenParser handles natural-language dates. Built once; rule sets are
// immutable after construction.
var whenParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseWhen turns user input into a scheduled time. Fixed layouts are
// tried first so unambiguous dates never depend on the natural-language
// rules.
func parseWhen(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("scheduled time is required (try \"tomorrow 9am\")")
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}

	r, err := whenParser.Parse(raw, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", raw, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand time %q (try \"tomorrow 9am\" or \"2026-03-14 09:00\")", raw)
	}
	return r.Time, nil
}

// isNextStop reports whether id is the snapshot's next planned stop.
func isNextStop(snap itinerary.Snapshot, id string) bool {
	next := snap.Next()
	return next != nil && next.ID == id
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "stop title (or pass it as arguments)")
	addCmd.Flags().StringVarP(&addAddress, "address", "a", "", "where the stop is")
	addCmd.Flags().StringVarP(&addAt, "at", "t", "", "when to be there (natural language ok)")
	addCmd.Flags().StringVarP(&addNotes, "notes", "n", "", "free-form notes")
	addCmd.Flags().StringVarP(&addCost, "cost", "c", "", "cost estimate")
	rootCmd.AddCommand(addCmd)
}
