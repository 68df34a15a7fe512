package insight

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Source identifies which rung of the resolution chain produced an answer.
type Source string

const (
	// SourceCache means the answer was served from the local cache.
	SourceCache Source = "cache"
	// SourceOffline means the answer is a canned heuristic.
	SourceOffline Source = "offline"
	// SourceOnline means the answer was freshly generated.
	SourceOnline Source = "online"
)

// Insight is the advice payload for one stop. Source is resolution
// metadata and is not persisted: a cached answer keeps reporting where it
// was served from, not where it was generated.
type Insight struct {
	StopID          string    `json:"stop_id"`
	Title           string    `json:"title"`
	Costs           FlexText  `json:"costs"`
	Weather         FlexText  `json:"weather"`
	Recommendations FlexText  `json:"recommendations"`
	Tips            FlexText  `json:"tips"`
	GeneratedAt     time.Time `json:"generated_at"`
	Source          Source    `json:"-"`
}

// FlexText is a string that tolerates sloppy JSON shapes on decode.
// Generated output sometimes returns a list or an object where a string
// was asked for; those are flattened to a comma-joined string instead of
// failing the whole payload.
type FlexText string

func (f FlexText) String() string { return string(f) }

// UnmarshalJSON accepts a string, number, list, or object and flattens it.
func (f *FlexText) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexText(flatten(v))
	return nil
}

func flatten(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+flatten(t[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
