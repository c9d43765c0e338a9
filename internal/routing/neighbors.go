package routing

import (
	"github.com/azaurus1/vanetsim/internal/types"
)

// NeighborTable tracks which vehicles were heard recently. Beacons act as
// HELLOs: every accepted beacon refreshes its sender's entry.
type NeighborTable struct {
	Entries map[int]NeighborEntry
}

type NeighborEntry struct {
	ID         int
	LastSeenMs int64
	Lat        float64
	Lon        float64
	SpeedKmh   float64
	Expiration int64
}

func NewNeighborTable() NeighborTable {
	return NeighborTable{Entries: make(map[int]NeighborEntry)}
}

// HandleHello refreshes the sender of a beacon. Older beacons than the one
// already recorded are ignored.
func (t *NeighborTable) HandleHello(msg types.Message, nowMs, timeoutMs int64) bool {
	if t.Entries == nil {
		t.Entries = make(map[int]NeighborEntry)
	}
	if prev, ok := t.Entries[msg.SenderID]; ok && msg.TimestampMs < prev.LastSeenMs {
		return false
	}

	t.Entries[msg.SenderID] = NeighborEntry{
		ID:         msg.SenderID,
		LastSeenMs: msg.TimestampMs,
		Lat:        msg.Lat,
		Lon:        msg.Lon,
		SpeedKmh:   msg.SpeedKmh,
		Expiration: nowMs + timeoutMs,
	}
	return true
}

// CheckExpiredNeighbours drops every entry past its expiration and
// returns how many were removed.
func (t *NeighborTable) CheckExpiredNeighbours(nowMs int64) int {
	removed := 0
	for id, entry := range t.Entries {
		if entry.Expiration <= nowMs {
			delete(t.Entries, id)
			removed++
		}
	}
	return removed
}

func (t *NeighborTable) Len() int {
	return len(t.Entries)
}
