package dashboard

import (
	"encoding/json"
	"log"
	"time"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// ItineraryData is the full collection as broadcast to clients.
type ItineraryData struct {
	Rev   uint64           `json:"rev"`
	Stops []itinerary.Stop `json:"stops"`
}

// StatsData summarizes the trip.
type StatsData struct {
	Total     int     `json:"total"`
	Planned   int     `json:"planned"`
	Visited   int     `json:"visited"`
	Skipped   int     `json:"skipped"`
	TotalCost float64 `json:"total_cost"`
	NextID    string  `json:"next_id,omitempty"`
	NextTitle string  `json:"next_title,omitempty"`
}

// ConnectivityData reports a network transition.
type ConnectivityData struct {
	Online bool `json:"online"`
}

// InsightData is an insight with its resolution source spelled out. The
// Insight type itself never serializes Source, but dashboard clients want
// to show whether advice is cached, offline, or fresh.
type InsightData struct {
	StopID          string    `json:"stop_id"`
	Title           string    `json:"title"`
	Costs           string    `json:"costs"`
	Weather         string    `json:"weather"`
	Recommendations string    `json:"recommendations"`
	Tips            string    `json:"tips"`
	GeneratedAt     time.Time `json:"generated_at"`
	Source          string    `json:"source"`
}

// Handler turns store, daemon, and network events into dashboard
// messages. Wire its methods into Store.Subscribe, the daemon's OnInsight
// hook, and the network monitor's transition callback.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates an event handler connected to a dashboard server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// OnSnapshot broadcasts the changed collection followed by fresh stats.
func (h *Handler) OnSnapshot(snap itinerary.Snapshot) {
	data := ItineraryData{Rev: snap.Rev, Stops: snap.Stops}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal itinerary data: %v", err)
		return
	}

	h.server.Broadcast(Message{
		Type:      MessageTypeItinerary,
		Timestamp: time.Now(),
		Data:      dataJSON,
	})

	h.broadcastStats(snap)
}

// OnConnectivity broadcasts an online/offline transition.
func (h *Handler) OnConnectivity(online bool) {
	state := "offline"
	if online {
		state = "online"
	}
	h.logger.Printf("Network %s", state)

	dataJSON, err := json.Marshal(ConnectivityData{Online: online})
	if err != nil {
		h.logger.Printf("Failed to marshal connectivity data: %v", err)
		return
	}

	h.server.Broadcast(Message{
		Type:      MessageTypeConnectivity,
		Timestamp: time.Now(),
		Data:      dataJSON,
	})
}

// OnInsight broadcasts a resolved insight.
func (h *Handler) OnInsight(ins insight.Insight) {
	data := InsightData{
		StopID:          ins.StopID,
		Title:           ins.Title,
		Costs:           string(ins.Costs),
		Weather:         string(ins.Weather),
		Recommendations: string(ins.Recommendations),
		Tips:            string(ins.Tips),
		GeneratedAt:     ins.GeneratedAt,
		Source:          string(ins.Source),
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal insight data: %v", err)
		return
	}

	h.server.Broadcast(Message{
		Type:      MessageTypeInsight,
		Timestamp: time.Now(),
		Data:      dataJSON,
	})
}

// broadcastStats derives statistics from a snapshot and sends them.
func (h *Handler) broadcastStats(snap itinerary.Snapshot) {
	stats := StatsData{
		Total:     len(snap.Stops),
		Planned:   len(snap.Planned()),
		Visited:   len(snap.Completed()),
		Skipped:   len(snap.Skipped()),
		TotalCost: snap.TotalCost(),
	}
	if next := snap.Next(); next != nil {
		stats.NextID = next.ID
		stats.NextTitle = next.Title
	}

	dataJSON, err := json.Marshal(stats)
	if err != nil {
		h.logger.Printf("Failed to marshal stats: %v", err)
		return
	}

	h.server.Broadcast(Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
		Data:      dataJSON,
	})
}
