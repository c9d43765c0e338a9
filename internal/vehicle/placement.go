package vehicle

import (
	"math"
)

const placementAttempts = 20

// Placement bounds the random draws used when scattering vehicles.
type Placement struct {
	MinRadiusMeters     float64
	MaxRadiusMeters     float64
	MinSeparationMeters float64
}

// Scatter creates up to count vehicles on random valid edges at positions
// in [0.1, 0.9]. Vehicles sharing an edge keep at least MinSeparationMeters
// between them; a vehicle that cannot be placed after a few draws is
// dropped, so fewer than count may be returned.
func (m *Mobility) Scatter(count int, p Placement) []*Vehicle {
	var valid []int
	for i := 0; i < m.graph.EdgeCount(); i++ {
		if m.graph.ValidEdge(i) {
			valid = append(valid, i)
		}
	}
	if count <= 0 || len(valid) == 0 {
		return nil
	}

	occupied := make(map[int][]float64)
	vehicles := make([]*Vehicle, 0, count)
	nextID := 1

	for n := 0; n < count; n++ {
		edge, t, ok := m.drawSlot(valid, occupied, p.MinSeparationMeters)
		if !ok {
			continue
		}
		occupied[edge] = append(occupied[edge], t)

		e, _ := m.graph.Edge(edge)
		v := New(nextID)
		nextID++

		v.EdgeIndex = edge
		v.PositionOnEdge = t
		v.MovingForward = e.Oneway || m.rng.Float64() < 0.5
		v.Highway = e.Highway
		v.CruiseSpeedKmh = speedLimit(e)
		v.SpeedKmh = v.CruiseSpeedKmh
		v.TransmissionRadiusMeters = p.MinRadiusMeters + (p.MaxRadiusMeters-p.MinRadiusMeters)*m.rng.Float64()
		m.Place(v)

		vehicles = append(vehicles, v)
	}

	return vehicles
}

func (m *Mobility) drawSlot(valid []int, occupied map[int][]float64, minSep float64) (int, float64, bool) {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		edge := valid[m.rng.Intn(len(valid))]
		t := 0.1 + 0.8*m.rng.Float64()

		e, _ := m.graph.Edge(edge)
		if separated(occupied[edge], t, e.LengthMeters, minSep) {
			return edge, t, true
		}
	}
	return 0, 0, false
}

func separated(others []float64, t, length, minSep float64) bool {
	for _, o := range others {
		if math.Abs(o-t)*length < minSep {
			return false
		}
	}
	return true
}
