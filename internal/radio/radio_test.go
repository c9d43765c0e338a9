package radio

import (
	"math/rand"
	"testing"

	"github.com/azaurus1/vanetsim/internal/vehicle"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(id int, lat, lon, radius float64) *vehicle.Vehicle {
	v := vehicle.New(id)
	v.Position = orb.Point{lon, lat}
	v.TransmissionRadiusMeters = radius
	return v
}

func TestInRangeCombinedRadius(t *testing.T) {
	a := at(1, 47.7500, 7.3350, 200)
	b := at(2, 47.7502, 7.3350, 150)

	assert.True(t, InRange(a, b))
	assert.True(t, InRange(b, a))

	// ~333 m apart: neither radius alone covers it, their sum does
	c := at(3, 47.7500, 7.3350, 200)
	d := at(4, 47.7530, 7.3350, 150)
	assert.True(t, InRange(c, d))

	d.TransmissionRadiusMeters = 100
	assert.False(t, InRange(c, d))
	assert.False(t, InRange(d, c))
}

func TestIndexConcretePair(t *testing.T) {
	vehicles := []*vehicle.Vehicle{
		at(1, 47.7500, 7.3350, 200),
		at(2, 47.7502, 7.3350, 150),
	}
	ix := Build(vehicles, 0.01)

	assert.Equal(t, []Pair{{A: 0, B: 1}}, ix.Pairs())
	assert.Equal(t, []int{1}, ix.Neighbors(0))
	assert.Equal(t, []int{0}, ix.Neighbors(1))
	assert.Nil(t, ix.Neighbors(9))
}

func TestIndexMatchesExhaustiveScan(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for _, cell := range []float64{0.02, 0.01, 0.004, 0.0005} {
		vehicles := make([]*vehicle.Vehicle, 150)
		for i := range vehicles {
			vehicles[i] = at(i+1,
				47.74+rng.Float64()*0.03,
				7.32+rng.Float64()*0.03,
				100+rng.Float64()*400)
		}

		var want []Pair
		for i := range vehicles {
			for j := i + 1; j < len(vehicles); j++ {
				if InRange(vehicles[i], vehicles[j]) {
					want = append(want, Pair{A: i, B: j})
				}
			}
		}

		ix := Build(vehicles, cell)
		assert.Equal(t, want, ix.Pairs(), "cell size %v", cell)

		for i := range vehicles {
			for _, j := range ix.Neighbors(i) {
				assert.Contains(t, ix.Neighbors(j), i, "connectivity must be symmetric")
			}
		}
	}
}

func TestIndexReach(t *testing.T) {
	equator := []*vehicle.Vehicle{at(1, 0, 0, 400), at(2, 0, 0.001, 400)}
	assert.Equal(t, 1, Build(equator, 0.01).Reach(), "9-cell window suffices")
	assert.Equal(t, 8, Build(equator, 0.001).Reach())

	north := []*vehicle.Vehicle{at(1, 60, 0, 400), at(2, 60, 0.001, 400)}
	assert.Equal(t, 2, Build(north, 0.01).Reach(), "longitude cells shrink with latitude")
}

func TestIndexDensity(t *testing.T) {
	vehicles := []*vehicle.Vehicle{
		at(1, 47.7501, 7.3351, 100),
		at(2, 47.7509, 7.3359, 100),
		at(3, 47.7521, 7.3351, 100),
	}
	density := Build(vehicles, 0.002).Density()

	require.Len(t, density, 2)
	assert.Equal(t, 2, density[CellOf(orb.Point{7.3351, 47.7501}, 0.002)])
	assert.Equal(t, 1, density[CellOf(orb.Point{7.3351, 47.7521}, 0.002)])
}

func TestCellOfNegativeCoordinates(t *testing.T) {
	assert.Equal(t, Cell{X: -1, Y: -1}, CellOf(orb.Point{-0.001, -0.001}, 0.01))
	assert.Equal(t, Cell{X: 0, Y: 0}, CellOf(orb.Point{0, 0}, 0.01))
}

func TestEmptyIndex(t *testing.T) {
	ix := Build(nil, 0.01)
	assert.Empty(t, ix.Pairs())
	assert.Empty(t, ix.Density())

	degenerate := Build([]*vehicle.Vehicle{at(1, 0, 0, 100), at(2, 0, 0.0001, 100)}, 0)
	assert.Equal(t, []Pair{{A: 0, B: 1}}, degenerate.Pairs())
}
