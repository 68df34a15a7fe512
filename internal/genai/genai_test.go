package genai

import (
	"strings"
	"testing"
	"time"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

var _ insight.Generator = (*Client)(nil)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New accepted an empty API key")
	}
	c, err := New(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.model != DefaultModel {
		t.Errorf("model = %q, want default", c.model)
	}
	if c.maxTokens != 1024 || c.maxSearches != 3 {
		t.Errorf("defaults = %d tokens / %d searches", c.maxTokens, c.maxSearches)
	}
}

func TestBuildPrompt(t *testing.T) {
	stop := itinerary.Stop{
		ID:          "abc",
		Title:       "Candi Borobudur",
		Address:     "Magelang, Central Java",
		ScheduledAt: time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC),
		Notes:       "sunrise ticket",
	}

	prompt := buildPrompt(stop)
	for _, want := range []string{"Candi Borobudur", "Magelang", "Monday, 14 July 2025", "09:00", "sunrise ticket"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	stop.Notes = ""
	if strings.Contains(buildPrompt(stop), "Traveler notes") {
		t.Error("prompt mentions notes when the stop has none")
	}
}

func TestParseInsight(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantTips string
	}{
		{
			"bare JSON",
			`{"costs":"50k entry","weather":"hot","recommendations":"go early","tips":"bring water"}`,
			"bring water",
		},
		{
			"fenced JSON",
			"```json\n{\"costs\":\"50k\",\"weather\":\"hot\",\"recommendations\":\"x\",\"tips\":\"bring water\"}\n```",
			"bring water",
		},
		{
			"prose wrapped",
			`Here is the information you asked for:
{"costs":"50k","weather":"hot","recommendations":"x","tips":"bring water"}
Let me know if you need anything else.`,
			"bring water",
		},
		{
			"list valued field",
			`{"costs":"50k","weather":"hot","recommendations":"x","tips":["bring water","wear a hat"]}`,
			"bring water, wear a hat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := parseInsight(tt.text)
			if err != nil {
				t.Fatalf("parseInsight: %v", err)
			}
			if string(ins.Tips) != tt.wantTips {
				t.Fatalf("Tips = %q, want %q", ins.Tips, tt.wantTips)
			}
		})
	}
}

func TestParseInsightErrors(t *testing.T) {
	if _, err := parseInsight("I could not find any information."); err == nil {
		t.Fatal("parseInsight accepted output with no JSON")
	}
	if _, err := parseInsight(`{"costs": broken}`); err == nil {
		t.Fatal("parseInsight accepted invalid JSON")
	}
}
