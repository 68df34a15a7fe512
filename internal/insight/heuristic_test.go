package insight

import (
	"strings"
	"testing"
	"time"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

func heuristicStop(title, address, notes string) itinerary.Stop {
	return itinerary.Stop{
		ID:          "stop-1",
		Title:       title,
		Address:     address,
		Notes:       notes,
		ScheduledAt: time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC),
		Status:      itinerary.StatusPlanned,
	}
}

func TestOfflineCategories(t *testing.T) {
	tests := []struct {
		name string
		stop itinerary.Stop
		// a distinctive fragment of the expected category's tips
		wantTips string
	}{
		{"beach by indonesian keyword", heuristicStop("Pantai Parangtritis", "Bantul", ""), "currents"},
		{"beach by english keyword", heuristicStop("Sunset Beach Walk", "Gili Trawangan", ""), "currents"},
		{"heritage temple", heuristicStop("Candi Borobudur", "Magelang", ""), "Dress modestly"},
		{"heritage museum", heuristicStop("Museum Sonobudoyo", "Yogyakarta", ""), "Dress modestly"},
		{"food market", heuristicStop("Pasar Beringharjo", "Yogyakarta", ""), "small bills"},
		{"case insensitive", heuristicStop("PANTAI SANUR", "Denpasar", ""), "currents"},
		{"no match falls to default", heuristicStop("Hotel check-in", "Jl. Sudirman 12", ""), "taxi fares"},
		{"only the title is matched", heuristicStop("Morning swim", "Pantai Kuta, Bali", "beach day"), "taxi fares"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := Offline(tt.stop)
			if ins.Source != SourceOffline {
				t.Errorf("Source = %q, want offline", ins.Source)
			}
			if ins.StopID != tt.stop.ID || ins.Title != tt.stop.Title {
				t.Errorf("identity fields = %q/%q, want stop's", ins.StopID, ins.Title)
			}
			if !strings.Contains(string(ins.Tips), tt.wantTips) {
				t.Errorf("Tips = %q, want fragment %q", ins.Tips, tt.wantTips)
			}
			for _, field := range []FlexText{ins.Costs, ins.Weather, ins.Recommendations, ins.Tips} {
				if field == "" {
					t.Error("heuristic answer has an empty field")
				}
			}
		})
	}
}

func TestOfflineDeterministic(t *testing.T) {
	stop := heuristicStop("Pantai Parangtritis", "Bantul", "")
	a := Offline(stop)
	b := Offline(stop)
	if a.Tips != b.Tips || a.Costs != b.Costs {
		t.Fatal("same stop produced different heuristic answers")
	}
}
