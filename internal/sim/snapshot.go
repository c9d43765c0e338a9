package sim

import (
	"sort"

	"github.com/azaurus1/vanetsim/internal/messaging"
	"github.com/azaurus1/vanetsim/internal/radio"
)

// VehicleView is the read-only picture of one vehicle after a tick.
type VehicleView struct {
	ID                int     `json:"id"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	SpeedKmh          float64 `json:"speed_kmh"`
	Highway           string  `json:"highway"`
	RadiusMeters      float64 `json:"radius_m"`
	ActiveAlert       bool    `json:"active_alert"`
	AlertAtMs         int64   `json:"alert_at_ms"`
	ReceivedAlert     bool    `json:"received_alert"`
	ReceivedAlertAtMs int64   `json:"received_alert_at_ms"`
	Sent              int     `json:"sent"`
	Received          int     `json:"received"`
	Relayed           int     `json:"relayed"`
	Neighbors         int     `json:"neighbors"`
}

// Link is an in-range pair of vehicle ids with A < B.
type Link struct {
	A int `json:"a"`
	B int `json:"b"`
}

// DensityCell counts the vehicles inside one heatmap cell whose south-west
// corner is (MinLat, MinLon).
type DensityCell struct {
	Cell   radio.Cell `json:"cell"`
	MinLat float64    `json:"min_lat"`
	MinLon float64    `json:"min_lon"`
	Count  int        `json:"count"`
}

// Snapshot is published after every tick. Its slices are never modified
// once published, so readers may keep them.
type Snapshot struct {
	TimeMs             int64           `json:"time_ms"`
	Vehicles           []VehicleView   `json:"vehicles"`
	Links              []Link          `json:"links"`
	Density            []DensityCell   `json:"density"`
	DensityCellDegrees float64         `json:"density_cell_degrees"`
	Stats              messaging.Stats `json:"stats"`
}

func (s *Simulation) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot
}

func (s *Simulation) publish(snap Snapshot) {
	s.snapMu.Lock()
	s.snapshot = snap
	s.snapMu.Unlock()
}

// buildSnapshot must be called with s.mu held.
func (s *Simulation) buildSnapshot(nowMs int64, stats messaging.Stats) Snapshot {
	snap := Snapshot{
		TimeMs:             nowMs,
		Vehicles:           make([]VehicleView, len(s.vehicles)),
		DensityCellDegrees: s.cfg.DensityCellDegrees,
		Stats:              stats,
	}

	for i, v := range s.vehicles {
		snap.Vehicles[i] = VehicleView{
			ID:                v.ID,
			Lat:               v.Lat(),
			Lon:               v.Lon(),
			SpeedKmh:          v.SpeedKmh,
			Highway:           v.Highway,
			RadiusMeters:      v.TransmissionRadiusMeters,
			ActiveAlert:       v.ActiveAlert,
			AlertAtMs:         v.AlertAtMs,
			ReceivedAlert:     v.ReceivedAlert,
			ReceivedAlertAtMs: v.ReceivedAlertAtMs,
			Sent:              v.Sent,
			Received:          v.Received,
			Relayed:           v.Relayed,
			Neighbors:         v.Neighbors.Len(),
		}
	}

	if s.air != nil {
		for _, p := range s.air.Pairs() {
			snap.Links = append(snap.Links, Link{A: s.vehicles[p.A].ID, B: s.vehicles[p.B].ID})
		}
	}

	size := s.cfg.DensityCellDegrees
	for cell, count := range radio.Build(s.vehicles, size).Density() {
		snap.Density = append(snap.Density, DensityCell{
			Cell:   cell,
			MinLat: float64(cell.Y) * size,
			MinLon: float64(cell.X) * size,
			Count:  count,
		})
	}
	sort.Slice(snap.Density, func(i, j int) bool {
		a, b := snap.Density[i].Cell, snap.Density[j].Cell
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	return snap
}
