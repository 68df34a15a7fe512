package itinerary

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"25000", 25000},
		{"12.50", 12.5},
		{"abc", 0},
		{"-40", 0},
		{"NaN", 0},
	}
	for _, tt := range tests {
		if got := ParseCost(tt.raw); got != tt.want {
			t.Errorf("ParseCost(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"planned", "Visited", " SKIPPED "} {
		if _, err := ParseStatus(raw); err != nil {
			t.Errorf("ParseStatus(%q): %v", raw, err)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Error("ParseStatus accepted an unknown status")
	}
}

func TestStopValidate(t *testing.T) {
	valid := Stop{
		ID:          "abc",
		Title:       "Candi Borobudur",
		Address:     "Magelang",
		ScheduledAt: time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC),
		Status:      StatusPlanned,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Stop)
	}{
		{"empty id", func(s *Stop) { s.ID = "" }},
		{"blank title", func(s *Stop) { s.Title = "  " }},
		{"blank address", func(s *Stop) { s.Address = "" }},
		{"zero time", func(s *Stop) { s.ScheduledAt = time.Time{} }},
		{"bad status", func(s *Stop) { s.Status = "done" }},
		{"negative cost", func(s *Stop) { s.Cost = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("Validate accepted an invalid stop")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Validate error %v does not wrap ErrValidation", err)
			}
		})
	}
}

func TestStopJSONRoundTrip(t *testing.T) {
	in := Stop{
		ID:          "550e8400-e29b-41d4-a716-446655440000",
		Title:       "Pantai Parangtritis",
		Address:     "Bantul, Yogyakarta",
		ScheduledAt: time.Date(2025, 7, 15, 16, 30, 0, 0, time.UTC),
		Notes:       "sunset",
		Cost:        10000,
		Status:      StatusSkipped,
		Position:    3,
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out Stop
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip changed the stop:\n got %+v\nwant %+v", out, in)
	}
}

func TestSortByTimeDeterministic(t *testing.T) {
	a := Stop{ID: "a", ScheduledAt: time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC), Position: 0}
	b := Stop{ID: "b", ScheduledAt: a.ScheduledAt, Position: 1}
	c := Stop{ID: "c", ScheduledAt: time.Date(2025, 7, 14, 8, 0, 0, 0, time.UTC), Position: 2}

	// Same result no matter how the input is arranged.
	for _, in := range [][]Stop{{a, b, c}, {c, b, a}, {b, a, c}} {
		stops := make([]Stop, len(in))
		copy(stops, in)
		sortByTime(stops)
		if stops[0].ID != "c" || stops[1].ID != "a" || stops[2].ID != "b" {
			t.Fatalf("sorted order = [%s %s %s], want [c a b]",
				stops[0].ID, stops[1].ID, stops[2].ID)
		}
	}
}
