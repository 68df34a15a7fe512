package itinerary

// Snapshot is a consistent copy of the collection at a single revision.
// Stops are ordered ascending by scheduled time. Snapshots are values:
// mutating one never affects the store or other holders.
//
// The derived views below are computed on demand from the stop list, never
// cached, so they can never drift from the collection they describe.
type Snapshot struct {
	Rev   uint64 `json:"rev"`
	Stops []Stop `json:"stops"`
}

// Next returns a copy of the earliest-scheduled stop still planned, or nil
// when nothing is left to visit. Visited and skipped stops are ignored, so
// reopening a skipped stop makes it eligible again.
func (s Snapshot) Next() *Stop {
	for i := range s.Stops {
		if s.Stops[i].Status == StatusPlanned {
			st := s.Stops[i]
			return &st
		}
	}
	return nil
}

// TotalCost sums the cost estimate of every stop regardless of status.
// Skipping or visiting a stop never changes the total.
func (s Snapshot) TotalCost() float64 {
	var total float64
	for _, st := range s.Stops {
		total += st.Cost
	}
	return total
}

// ByStatus returns the stops with the given status, in scheduled order.
func (s Snapshot) ByStatus(status Status) []Stop {
	out := make([]Stop, 0, len(s.Stops))
	for _, st := range s.Stops {
		if st.Status == status {
			out = append(out, st)
		}
	}
	return out
}

// Planned returns the stops still ahead, in scheduled order.
func (s Snapshot) Planned() []Stop { return s.ByStatus(StatusPlanned) }

// Skipped returns the stops the traveler passed over.
func (s Snapshot) Skipped() []Stop { return s.ByStatus(StatusSkipped) }

// Completed returns the stops already visited.
func (s Snapshot) Completed() []Stop { return s.ByStatus(StatusVisited) }

// Find returns a copy of the stop with the given id, or nil.
func (s Snapshot) Find(id string) *Stop {
	for i := range s.Stops {
		if s.Stops[i].ID == id {
			st := s.Stops[i]
			return &st
		}
	}
	return nil
}
