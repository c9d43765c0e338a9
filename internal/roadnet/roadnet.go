package roadnet

import (
	"github.com/paulmach/orb"
)

// DefaultMaxSpeedKmh applies to edges whose speed limit is unknown.
const DefaultMaxSpeedKmh = 50.0

type Node struct {
	ID    int64     `json:"id"`
	Point orb.Point `json:"point"`
}

func (n Node) Lat() float64 { return n.Point.Lat() }
func (n Node) Lon() float64 { return n.Point.Lon() }

// Edge is a directed road segment between two node indices.
type Edge struct {
	ID           int64   `json:"id"`
	From         int     `json:"from"`
	To           int     `json:"to"`
	LengthMeters float64 `json:"length_m"`
	Oneway       bool    `json:"oneway"`
	MaxSpeedKmh  float64 `json:"max_speed_kmh"`
	Highway      string  `json:"highway"`
}

// Graph is an immutable road network addressed by dense node and edge
// indices. A nil *Graph behaves as an empty network.
type Graph struct {
	nodes    []Node
	edges    []Edge
	outgoing [][]int
	incoming [][]int
	bound    orb.Bound
}

// New indexes nodes and edges. Edges with dangling endpoints are kept at
// their index so edge ids stay dense, but they never appear in incidence
// lists and ValidEdge reports false for them.
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes:    nodes,
		edges:    edges,
		outgoing: make([][]int, len(nodes)),
		incoming: make([][]int, len(nodes)),
	}

	for i, e := range edges {
		if !g.ValidEdge(i) {
			continue
		}
		g.outgoing[e.From] = append(g.outgoing[e.From], i)
		g.incoming[e.To] = append(g.incoming[e.To], i)
	}

	if len(nodes) > 0 {
		g.bound = orb.Bound{Min: nodes[0].Point, Max: nodes[0].Point}
		for _, n := range nodes[1:] {
			g.bound = g.bound.Extend(n.Point)
		}
	}

	return g
}

func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}

func (g *Graph) Empty() bool {
	return g.NodeCount() == 0 || g.EdgeCount() == 0
}

func (g *Graph) Node(i int) (Node, bool) {
	if g == nil || i < 0 || i >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[i], true
}

func (g *Graph) Edge(i int) (Edge, bool) {
	if g == nil || i < 0 || i >= len(g.edges) {
		return Edge{}, false
	}
	return g.edges[i], true
}

// ValidEdge reports whether edge i exists and both its endpoints do.
func (g *Graph) ValidEdge(i int) bool {
	e, ok := g.Edge(i)
	if !ok {
		return false
	}
	return e.From >= 0 && e.From < len(g.nodes) && e.To >= 0 && e.To < len(g.nodes)
}

// Outgoing lists edges whose origin is node.
func (g *Graph) Outgoing(node int) []int {
	if g == nil || node < 0 || node >= len(g.outgoing) {
		return nil
	}
	return g.outgoing[node]
}

// Incoming lists edges whose destination is node.
func (g *Graph) Incoming(node int) []int {
	if g == nil || node < 0 || node >= len(g.incoming) {
		return nil
	}
	return g.incoming[node]
}

func (g *Graph) Bound() orb.Bound {
	if g == nil {
		return orb.Bound{}
	}
	return g.bound
}

// Nodes and Edges expose the backing slices; callers must not modify them.
func (g *Graph) Nodes() []Node {
	if g == nil {
		return nil
	}
	return g.nodes
}

func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	return g.edges
}

// PointAt interpolates the position t in [0,1] along edge i.
func (g *Graph) PointAt(i int, t float64) (orb.Point, bool) {
	if !g.ValidEdge(i) {
		return orb.Point{}, false
	}
	e := g.edges[i]
	from := g.nodes[e.From].Point
	to := g.nodes[e.To].Point
	t = Clamp01(t)

	return orb.Point{
		from[0] + (to[0]-from[0])*t,
		from[1] + (to[1]-from[1])*t,
	}, true
}

func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
