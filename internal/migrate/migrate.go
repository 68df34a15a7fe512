// Package migrate moves itineraries in and out of the local store as
// portable files. Export writes the collection as JSON or YAML; import
// merges a file back in by stop id.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// Format selects the export encoding.
type Format string

const (
	// FormatJSON is the native format and the import default.
	FormatJSON Format = "json"

	// FormatYAML is the human-editable alternative.
	FormatYAML Format = "yaml"
)

// ParseFormat converts user input into a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or yaml)", raw)
}

// Document is the portable file layout. It carries traveler data only;
// creation positions are bookkeeping and get reassigned on import.
type Document struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Stops      []Record  `json:"stops" yaml:"stops"`
}

// Record is one stop in the portable layout.
type Record struct {
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string    `json:"title" yaml:"title"`
	Address     string    `json:"address" yaml:"address"`
	ScheduledAt time.Time `json:"scheduled_at" yaml:"scheduled_at"`
	Notes       string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Cost        FlexCost  `json:"cost,omitempty" yaml:"cost,omitempty"`
	Status      string    `json:"status,omitempty" yaml:"status,omitempty"`
}

// FlexCost decodes a cost that hand-edited files write as either a number
// or a string. Anything unparseable or negative becomes 0, matching the
// cost handling on the add path.
type FlexCost float64

func (c *FlexCost) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*c = clampCost(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*c = FlexCost(itinerary.ParseCost(str))
		return nil
	}
	return fmt.Errorf("cost must be a number or string, got %s", data)
}

func (c *FlexCost) UnmarshalYAML(value *yaml.Node) error {
	var num float64
	if err := value.Decode(&num); err == nil {
		*c = clampCost(num)
		return nil
	}
	var str string
	if err := value.Decode(&str); err == nil {
		*c = FlexCost(itinerary.ParseCost(str))
		return nil
	}
	return fmt.Errorf("cost must be a number or string, got %q", value.Value)
}

func clampCost(v float64) FlexCost {
	if v < 0 {
		return 0
	}
	return FlexCost(v)
}

// FromSnapshot builds a portable document from the current collection.
func FromSnapshot(snap itinerary.Snapshot) *Document {
	doc := &Document{
		ExportedAt: time.Now().UTC(),
		Stops:      make([]Record, 0, len(snap.Stops)),
	}
	for _, st := range snap.Stops {
		doc.Stops = append(doc.Stops, Record{
			ID:          st.ID,
			Title:       st.Title,
			Address:     st.Address,
			ScheduledAt: st.ScheduledAt,
			Notes:       st.Notes,
			Cost:        FlexCost(st.Cost),
			Status:      string(st.Status),
		})
	}
	return doc
}

// ToStops converts the document's records for Store.Merge. Status strings
// are normalized; validation happens in the merge.
func (d *Document) ToStops() []itinerary.Stop {
	stops := make([]itinerary.Stop, 0, len(d.Stops))
	for _, rec := range d.Stops {
		stops = append(stops, itinerary.Stop{
			ID:          strings.TrimSpace(rec.ID),
			Title:       rec.Title,
			Address:     rec.Address,
			ScheduledAt: rec.ScheduledAt,
			Notes:       rec.Notes,
			Cost:        float64(rec.Cost),
			Status:      itinerary.Status(strings.ToLower(strings.TrimSpace(rec.Status))),
		})
	}
	return stops
}

// Export writes the document to w in the given format.
func Export(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

// ExportFile writes the document to path atomically via a temp file.
func ExportFile(path string, doc *Document, format Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	// #nosec G304 - controlled path from CLI
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := Export(f, doc, format); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadFile parses a portable document. The format follows the file
// extension: .yaml and .yml decode as YAML, everything else as JSON.
func ReadFile(path string) (*Document, error) {
	// #nosec G304 - controlled path from CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	}
	return &doc, nil
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Created  int
	Updated  int
	Snapshot itinerary.Snapshot
}

// Import merges the stops from path into the store by id and runs one
// persist cycle. The whole file is validated before anything mutates, so
// a bad record rejects the import without partial changes.
func Import(ctx context.Context, store *itinerary.Store, path string) (*ImportResult, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(doc.Stops) == 0 {
		return nil, fmt.Errorf("%s contains no stops", path)
	}

	snap, stats, err := store.Merge(ctx, doc.ToStops())
	if err != nil {
		return nil, fmt.Errorf("import rejected: %w", err)
	}
	return &ImportResult{
		Created:  stats.Created,
		Updated:  stats.Updated,
		Snapshot: snap,
	}, nil
}
