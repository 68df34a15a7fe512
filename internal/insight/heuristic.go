package insight

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

//go:embed heuristic.toml
var heuristicTOML []byte

type heuristicCategory struct {
	Name            string   `toml:"name"`
	Keywords        []string `toml:"keywords"`
	Costs           string   `toml:"costs"`
	Weather         string   `toml:"weather"`
	Recommendations string   `toml:"recommendations"`
	Tips            string   `toml:"tips"`
}

type heuristicCatalog struct {
	Categories []heuristicCategory `toml:"category"`
	Default    heuristicCategory   `toml:"default"`
}

var heuristics = mustLoadHeuristics()

func mustLoadHeuristics() heuristicCatalog {
	var cat heuristicCatalog
	if err := toml.Unmarshal(heuristicTOML, &cat); err != nil {
		panic(fmt.Sprintf("insight: embedded heuristic catalog is invalid: %v", err))
	}
	return cat
}

// Offline picks a canned answer for the stop by keyword category. It is
// deterministic, needs no network, and its output is never cached.
func Offline(stop itinerary.Stop) Insight {
	haystack := strings.ToLower(stop.Title)

	match := heuristics.Default
	for _, cat := range heuristics.Categories {
		if matchesKeywords(haystack, cat.Keywords) {
			match = cat
			break
		}
	}

	return Insight{
		StopID:          stop.ID,
		Title:           stop.Title,
		Costs:           FlexText(match.Costs),
		Weather:         FlexText(match.Weather),
		Recommendations: FlexText(match.Recommendations),
		Tips:            FlexText(match.Tips),
		GeneratedAt:     time.Now().UTC(),
		Source:          SourceOffline,
	}
}

func matchesKeywords(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
