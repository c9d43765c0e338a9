package radio

import (
	"math"
	"sort"

	"github.com/azaurus1/vanetsim/internal/roadnet"
	"github.com/azaurus1/vanetsim/internal/vehicle"
	"github.com/paulmach/orb"
)

// This is simulating the "air" for the vehicles

const (
	metersPerDegree = roadnet.EarthRadiusMeters * math.Pi / 180

	// great circles between two points on a parallel are slightly shorter
	// than the parallel itself, so longitude reach gets some slack
	lonSlack = 1.05
	minCos   = 0.01
	// beyond this many rings the window is no cheaper than a full scan
	maxReach = 64
)

// Cell is a grid coordinate: floor(lon/size), floor(lat/size).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pair holds two vehicle indices with A < B.
type Pair struct {
	A int
	B int
}

func CellOf(p orb.Point, size float64) Cell {
	return Cell{
		X: int(math.Floor(p.Lon() / size)),
		Y: int(math.Floor(p.Lat() / size)),
	}
}

// InRange reports whether a and b can hear each other: their distance is
// at most the sum of both transmission radii.
func InRange(a, b *vehicle.Vehicle) bool {
	return roadnet.Distance(a.Position, b.Position) <= a.TransmissionRadiusMeters+b.TransmissionRadiusMeters
}

// Index bins vehicles into a grid so range queries only look at nearby
// cells. The window is the 3x3 block around a cell, widened when the cell
// is smaller than the largest combined range at the fleet's latitude.
type Index struct {
	vehicles   []*vehicle.Vehicle
	cellSize   float64
	reach      int
	exhaustive bool
	cells      map[Cell][]int
	cellOf     []Cell
}

func Build(vehicles []*vehicle.Vehicle, cellSizeDegrees float64) *Index {
	ix := &Index{
		vehicles: vehicles,
		cellSize: cellSizeDegrees,
		reach:    1,
		cells:    make(map[Cell][]int),
		cellOf:   make([]Cell, len(vehicles)),
	}
	if !(cellSizeDegrees > 0) {
		ix.exhaustive = true
		return ix
	}

	maxRadius, maxAbsLat := 0.0, 0.0
	for i, v := range vehicles {
		c := CellOf(v.Position, cellSizeDegrees)
		ix.cellOf[i] = c
		ix.cells[c] = append(ix.cells[c], i)

		maxRadius = math.Max(maxRadius, v.TransmissionRadiusMeters)
		maxAbsLat = math.Max(maxAbsLat, math.Abs(v.Lat()))
	}

	span := 2 * maxRadius
	cos := math.Max(math.Cos(maxAbsLat*math.Pi/180), minCos)
	dLat := span / metersPerDegree
	dLon := span * lonSlack / (metersPerDegree * cos)

	reach := int(math.Ceil(math.Max(dLat, dLon) / cellSizeDegrees))
	switch {
	case reach > maxReach:
		ix.exhaustive = true
	case reach > 1:
		ix.reach = reach
	}

	return ix
}

func (ix *Index) Reach() int        { return ix.reach }
func (ix *Index) CellSize() float64 { return ix.cellSize }
func (ix *Index) Len() int          { return len(ix.vehicles) }

// Neighbors returns the indices of every vehicle in range of vehicle i,
// excluding i itself.
func (ix *Index) Neighbors(i int) []int {
	if i < 0 || i >= len(ix.vehicles) {
		return nil
	}

	var out []int
	ix.window(i, func(j int) {
		if j != i && InRange(ix.vehicles[i], ix.vehicles[j]) {
			out = append(out, j)
		}
	})
	sort.Ints(out)
	return out
}

// Pairs enumerates every unordered in-range pair exactly once, sorted.
func (ix *Index) Pairs() []Pair {
	seen := make(map[Pair]struct{})
	for i := range ix.vehicles {
		ix.window(i, func(j int) {
			if j == i {
				return
			}
			key := Pair{A: min(i, j), B: max(i, j)}
			if _, ok := seen[key]; ok {
				return
			}
			if InRange(ix.vehicles[i], ix.vehicles[j]) {
				seen[key] = struct{}{}
			}
		})
	}

	pairs := make([]Pair, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].A != pairs[b].A {
			return pairs[a].A < pairs[b].A
		}
		return pairs[a].B < pairs[b].B
	})
	return pairs
}

// Density counts vehicles per cell.
func (ix *Index) Density() map[Cell]int {
	density := make(map[Cell]int, len(ix.cells))
	for c, members := range ix.cells {
		density[c] = len(members)
	}
	return density
}

func (ix *Index) window(i int, fn func(j int)) {
	if ix.exhaustive {
		for j := range ix.vehicles {
			fn(j)
		}
		return
	}

	c := ix.cellOf[i]
	for dx := -ix.reach; dx <= ix.reach; dx++ {
		for dy := -ix.reach; dy <= ix.reach; dy++ {
			for _, j := range ix.cells[Cell{X: c.X + dx, Y: c.Y + dy}] {
				fn(j)
			}
		}
	}
}
