package sim

import (
	"context"
	"math"
	"testing"

	"github.com/azaurus1/vanetsim/internal/roadnet"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTime struct {
	ms int64
}

func (f *fakeTime) NowMillis() int64 { return f.ms }

// avenue is a single ~10 km two-way street travelled at 36 km/h (10 m/s).
func avenue() *roadnet.Graph {
	from := orb.Point{7.335, 47.75}
	to := orb.Point{7.470, 47.75}
	return roadnet.New(
		[]roadnet.Node{{ID: 1, Point: from}, {ID: 2, Point: to}},
		[]roadnet.Edge{
			{ID: 1, From: 0, To: 1, LengthMeters: roadnet.Distance(from, to), MaxSpeedKmh: 36, Highway: "primary"},
		},
	)
}

func newClock(t *testing.T, vehicles int) (*Clock, *Simulation, *fakeTime) {
	t.Helper()
	s := newSim(t, testConfig(vehicles))
	require.NoError(t, s.LoadNetwork(avenue()))

	ft := &fakeTime{}
	return NewClock(s, ft, quietLog()), s, ft
}

func travelled(s *Simulation, before float64) float64 {
	e, _ := s.graph.Edge(0)
	return math.Abs(s.vehicles[0].PositionOnEdge-before) * e.LengthMeters
}

func TestClockStepRequiresStart(t *testing.T) {
	c, s, ft := newClock(t, 1)

	ft.ms = 100
	assert.False(t, c.Step())
	assert.Zero(t, s.Snapshot().TimeMs)

	c.Start()
	assert.True(t, c.Running())
	ft.ms = 116
	assert.True(t, c.Step())
	assert.Equal(t, int64(116), s.Snapshot().TimeMs)
}

func TestClockMultiplierScalesDistance(t *testing.T) {
	for _, m := range []float64{0.5, 1, 2, 5} {
		c, s, ft := newClock(t, 1)
		require.NoError(t, c.SetMultiplier(m))

		before := s.vehicles[0].PositionOnEdge
		c.Start()
		ft.ms = 1000
		c.Step()

		assert.InDelta(t, 10*m, travelled(s, before), 1e-6, "multiplier %v", m)
	}
}

func TestClockRejectsUnknownMultiplier(t *testing.T) {
	c, _, _ := newClock(t, 1)
	assert.ErrorIs(t, c.SetMultiplier(3), ErrUnknownMultiplier)
	assert.Equal(t, 1.0, c.Multiplier())
}

func TestClockBeaconPeriodIgnoresMultiplier(t *testing.T) {
	for _, m := range []float64{0.5, 5} {
		c, s, ft := newClock(t, 3)
		require.NoError(t, c.SetMultiplier(m))
		c.Start()

		for ft.ms = 16; ft.ms < 500; ft.ms += 16 {
			c.Step()
		}
		for _, v := range s.vehicles {
			assert.Zero(t, v.Sent, "no beacon before the first period")
		}

		ft.ms = 500
		c.Step()
		for _, v := range s.vehicles {
			assert.Equal(t, 1, v.Sent)
		}

		for ft.ms = 516; ft.ms <= 1012; ft.ms += 16 {
			c.Step()
		}
		for _, v := range s.vehicles {
			assert.Equal(t, 2, v.Sent, "multiplier %v", m)
		}
	}
}

func TestClockBeaconKeepsPhaseAfterStall(t *testing.T) {
	c, s, ft := newClock(t, 1)
	c.Start()

	ft.ms = 1300
	c.Step()
	assert.Equal(t, 1, s.vehicles[0].Sent)
	assert.Equal(t, int64(1000), c.lastBeaconMs)
}

func TestClockPauseFreezesState(t *testing.T) {
	c, s, ft := newClock(t, 1)
	c.Start()
	ft.ms = 1000
	c.Step()

	c.Pause()
	assert.False(t, c.Running())
	pos := s.vehicles[0].PositionOnEdge

	ft.ms = 60_000
	assert.False(t, c.Step())
	assert.Equal(t, pos, s.vehicles[0].PositionOnEdge)

	// reconfiguration is only allowed while halted
	c.Start()
	assert.ErrorIs(t, s.LoadNetwork(avenue()), ErrRunning)
	assert.ErrorIs(t, s.SetVehicleCount(2), ErrRunning)

	// the paused minute is not simulated on resume
	ft.ms = 61_000
	c.Step()
	assert.InDelta(t, 10, travelled(s, pos), 1e-6)

	c.Toggle()
	assert.False(t, c.Running())
	require.NoError(t, s.SetVehicleCount(2))
}

func TestClockRunStopsOnCancel(t *testing.T) {
	c, _, _ := newClock(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}
