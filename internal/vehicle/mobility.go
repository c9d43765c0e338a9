package vehicle

import (
	"github.com/azaurus1/vanetsim/internal/roadnet"
)

// at most this many edge transitions are resolved in a single advance,
// which bounds the work done on chains of zero-length edges
const maxTransitions = 32

// Rand is the randomness the mobility model and placement draw from.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type Mobility struct {
	graph *roadnet.Graph
	rng   Rand
}

func NewMobility(g *roadnet.Graph, rng Rand) *Mobility {
	return &Mobility{graph: g, rng: rng}
}

type candidate struct {
	edge    int
	forward bool
}

// Advance moves v along its edge by the distance covered in dt seconds at
// its current speed. Distance left over at an intersection carries onto
// the next edge so that nothing is lost at a boundary.
func (m *Mobility) Advance(v *Vehicle, dt float64) {
	if !(dt > 0) || !m.graph.ValidEdge(v.EdgeIndex) {
		return
	}

	remaining := v.SpeedKmh / 3.6 * dt
	for hops := 0; remaining > 0 && hops <= maxTransitions; hops++ {
		e, _ := m.graph.Edge(v.EdgeIndex)

		toEnd := 0.0
		if e.LengthMeters > 0 {
			if v.MovingForward {
				toEnd = (1 - v.PositionOnEdge) * e.LengthMeters
			} else {
				toEnd = v.PositionOnEdge * e.LengthMeters
			}
		}

		if remaining < toEnd {
			step := remaining / e.LengthMeters
			if v.MovingForward {
				v.PositionOnEdge += step
			} else {
				v.PositionOnEdge -= step
			}
			v.PositionOnEdge = roadnet.Clamp01(v.PositionOnEdge)
			break
		}

		remaining -= toEnd
		if v.MovingForward {
			v.PositionOnEdge = 1
		} else {
			v.PositionOnEdge = 0
		}

		if !m.transition(v) {
			break
		}
	}

	m.Place(v)
}

// Place recomputes v's coordinates from its edge and on-edge position.
func (m *Mobility) Place(v *Vehicle) {
	v.PositionOnEdge = roadnet.Clamp01(v.PositionOnEdge)
	if p, ok := m.graph.PointAt(v.EdgeIndex, v.PositionOnEdge); ok {
		v.Position = p
	}
}

// transition moves v from the end of its edge onto a connected edge. It
// returns false at a dead end, where v turns around in place.
func (m *Mobility) transition(v *Vehicle) bool {
	e, _ := m.graph.Edge(v.EdgeIndex)
	node := e.From
	if v.MovingForward {
		node = e.To
	}

	cands := m.candidates(node, v.EdgeIndex)
	if len(cands) == 0 {
		cands = m.twoWayEdges(node)
	}
	if len(cands) == 0 {
		v.MovingForward = !v.MovingForward
		return false
	}

	next := cands[m.rng.Intn(len(cands))]
	ne, _ := m.graph.Edge(next.edge)

	v.EdgeIndex = next.edge
	v.MovingForward = next.forward
	if next.forward {
		v.PositionOnEdge = 0
	} else {
		v.PositionOnEdge = 1
	}
	v.Highway = ne.Highway
	v.CruiseSpeedKmh = speedLimit(ne)

	return true
}

// candidates lists edges leaving node, plus two-way edges that end at node
// and are therefore entered in reverse. The edge just traversed is excluded.
func (m *Mobility) candidates(node, current int) []candidate {
	var out []candidate
	for _, i := range m.graph.Outgoing(node) {
		if i != current {
			out = append(out, candidate{edge: i, forward: true})
		}
	}
	for _, i := range m.graph.Incoming(node) {
		if e, _ := m.graph.Edge(i); i != current && !e.Oneway {
			out = append(out, candidate{edge: i, forward: false})
		}
	}
	return out
}

// twoWayEdges lists every two-way edge touching node, the current one included.
func (m *Mobility) twoWayEdges(node int) []candidate {
	var out []candidate
	for _, i := range m.graph.Outgoing(node) {
		if e, _ := m.graph.Edge(i); !e.Oneway {
			out = append(out, candidate{edge: i, forward: true})
		}
	}
	for _, i := range m.graph.Incoming(node) {
		if e, _ := m.graph.Edge(i); !e.Oneway {
			out = append(out, candidate{edge: i, forward: false})
		}
	}
	return out
}

func speedLimit(e roadnet.Edge) float64 {
	if e.MaxSpeedKmh > 0 {
		return e.MaxSpeedKmh
	}
	return roadnet.DefaultMaxSpeedKmh
}
