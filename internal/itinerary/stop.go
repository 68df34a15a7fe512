package itinerary

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a stop.
type Status string

const (
	// StatusPlanned marks a stop that has not been visited yet. New stops
	// always start planned.
	StatusPlanned Status = "planned"

	// StatusVisited marks a stop the traveler has completed.
	StatusVisited Status = "visited"

	// StatusSkipped marks a stop the traveler decided to pass over. A
	// skipped stop can be reopened to planned later.
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusVisited, StatusSkipped:
		return true
	}
	return false
}

// ParseStatus converts user input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q (want planned, visited, or skipped)", raw)
	}
	return s, nil
}

// Stop is a single destination on the itinerary.
//
// Position records creation order and breaks ties between stops scheduled
// at the exact same time. It never changes after creation, even when other
// stops are removed.
type Stop struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       string    `json:"notes,omitempty"`
	Cost        float64   `json:"cost"`
	Status      Status    `json:"status"`
	Position    int       `json:"position"`
}

// Validate checks structural invariants on a fully formed stop. The remote
// drivers run it before writing rows, so a bug upstream cannot poison the
// shared table. Errors wrap ErrValidation.
func (s *Stop) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if s.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled time is required", ErrValidation)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, s.Status)
	}
	if s.Cost < 0 || math.IsNaN(s.Cost) {
		return fmt.Errorf("%w: cost must be a non-negative number, got %v", ErrValidation, s.Cost)
	}
	return nil
}

// NewStop carries the caller-supplied fields for Store.Add. ID, status, and
// position are assigned by the store.
type NewStop struct {
	Title   string
	Address string
	At      time.Time
	Notes   string
	Cost    float64
}

func (in NewStop) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if in.At.IsZero() {
		return fmt.Errorf("%w: scheduled time is required", ErrValidation)
	}
	return nil
}

// ParseCost converts free-form cost input into a non-negative estimate.
// Blank, unparseable, or negative input yields 0: cost is advisory and
// never a reason to reject a stop.
func ParseCost(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// newID returns a fresh stop identifier.
func newID() string {
	return uuid.NewString()
}

// sortByTime sorts stops ascending by scheduled time, breaking ties by
// creation position so the order is deterministic regardless of how the
// input slice was arranged.
func sortByTime(stops []Stop) {
	sort.SliceStable(stops, func(i, j int) bool {
		if stops[i].ScheduledAt.Equal(stops[j].ScheduledAt) {
			return stops[i].Position < stops[j].Position
		}
		return stops[i].ScheduledAt.Before(stops[j].ScheduledAt)
	})
}
