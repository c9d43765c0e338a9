package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/azaurus1/vanetsim/internal/config"
	"github.com/sirupsen/logrus"
)

// TimeSource yields monotonic wall-clock milliseconds.
type TimeSource interface {
	NowMillis() int64
}

type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowMillis() int64 {
	return time.Since(c.start).Milliseconds()
}

// Clock drives the simulation with two periods that start and stop
// together: the tick, whose elapsed time is scaled by the speed multiplier,
// and the beacon period, which is not.
type Clock struct {
	sim          *Simulation
	src          TimeSource
	cfg          config.Config
	tickInterval time.Duration
	beaconMs     int64
	log          *logrus.Entry

	mu           sync.Mutex
	running      bool
	multiplier   float64
	lastTickMs   int64
	lastBeaconMs int64
}

func NewClock(s *Simulation, src TimeSource, log *logrus.Entry) *Clock {
	cfg := s.Config()
	multiplier := cfg.SpeedMultipliers[0]
	if cfg.HasMultiplier(1) {
		multiplier = 1
	}

	return &Clock{
		sim:          s,
		src:          src,
		cfg:          cfg,
		tickInterval: cfg.TickInterval,
		beaconMs:     cfg.BeaconInterval.Milliseconds(),
		multiplier:   multiplier,
		log:          log.WithField("component", "clock"),
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	now := c.src.NowMillis()
	c.lastTickMs = now
	c.lastBeaconMs = now
	c.running = true
	c.sim.setRunning(true)

	c.log.WithField("multiplier", c.multiplier).Info("clock started")
}

// Pause waits for an in-flight tick to finish, so state is left exactly as
// of the last completed tick.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.running = false
	c.sim.setRunning(false)

	c.log.Info("clock paused")
}

func (c *Clock) Toggle() {
	if c.Running() {
		c.Pause()
		return
	}
	c.Start()
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) Multiplier() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.multiplier
}

// SetMultiplier selects one of the configured speed multipliers.
func (c *Clock) SetMultiplier(m float64) error {
	if !c.cfg.HasMultiplier(m) {
		return fmt.Errorf("set multiplier %.2f: %w", m, ErrUnknownMultiplier)
	}

	c.mu.Lock()
	c.multiplier = m
	c.mu.Unlock()

	c.log.WithField("multiplier", m).Info("speed multiplier changed")
	return nil
}

// Step runs one tick for the wall time elapsed since the previous one and
// emits beacons when a beacon period has passed. It reports whether a tick ran.
func (c *Clock) Step() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return false
	}

	now := c.src.NowMillis()
	elapsed := now - c.lastTickMs
	if elapsed < 0 {
		elapsed = 0
	}
	c.lastTickMs = now
	c.sim.Tick(float64(elapsed)/1000*c.multiplier, now)

	if since := now - c.lastBeaconMs; since >= c.beaconMs {
		c.sim.EmitBeacons(now)
		// keep the beacon phase even after a stall
		c.lastBeaconMs = now - since%c.beaconMs
	}

	return true
}

// Run steps the clock every tick interval until ctx is done. Paused
// intervals are skipped.
func (c *Clock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Step()
		}
	}
}
