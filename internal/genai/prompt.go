package genai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

const systemPrompt = `You are a travel assistant for an itinerary app.
Answer with practical, current, locally grounded advice for one destination.
Respond with ONLY a JSON object, no prose before or after, using exactly
these keys with string values:
{"costs": "...", "weather": "...", "recommendations": "...", "tips": "..."}`

func buildPrompt(stop itinerary.Stop) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Destination: %s\n", stop.Title)
	fmt.Fprintf(&sb, "Address: %s\n", stop.Address)
	fmt.Fprintf(&sb, "Planned visit: %s\n", stop.ScheduledAt.Format("Monday, 2 January 2006 at 15:04"))
	if stop.Notes != "" {
		fmt.Fprintf(&sb, "Traveler notes: %s\n", stop.Notes)
	}
	sb.WriteString("\nGive expected costs (entry, typical extras), the weather to expect ")
	sb.WriteString("around that date, what to see or do there, and practical tips for a visitor.")
	return sb.String()
}

// parseInsight pulls the JSON object out of the model's reply. The prompt
// demands bare JSON but replies still show up wrapped in code fences or a
// sentence of preamble, so everything outside the outermost braces is
// discarded. Field values of the wrong shape are flattened by FlexText.
func parseInsight(text string) (insight.Insight, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return insight.Insight{}, fmt.Errorf("no JSON object in output %q", clip(text))
	}

	var ins insight.Insight
	if err := json.Unmarshal([]byte(text[start:end+1]), &ins); err != nil {
		return insight.Insight{}, fmt.Errorf("invalid JSON in output: %w", err)
	}
	return ins, nil
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
