package config

import (
	"errors"
	"fmt"
	"time"
)

// MetersPerDegree is the length of one degree of latitude on the
// 6,371 km sphere used for distances.
const MetersPerDegree = 111_194.93

var ErrInvalid = errors.New("invalid configuration")

// Config collects every tunable of the simulation. It is built once and
// injected into the components that need it.
type Config struct {
	VehicleCount int

	// TickInterval is the target wall-clock period between ticks.
	TickInterval time.Duration
	// BeaconInterval is the real-time beacon period. It ignores the speed multiplier.
	BeaconInterval   time.Duration
	SpeedMultipliers []float64

	AlertTTL          int
	LowSpeedKmh       float64
	MinSpeedDropKmh   float64
	AlertHold         time.Duration
	ReceivedAlertHold time.Duration

	MinRadiusMeters     float64
	MaxRadiusMeters     float64
	MinSeparationMeters float64

	ConnectivityCellDegrees float64
	DensityCellDegrees      float64

	NeighborTimeout   time.Duration
	StopRatePerSecond float64
	StopDuration      time.Duration
}

func DefaultConfig() Config {
	return Config{
		VehicleCount:            60,
		TickInterval:            16 * time.Millisecond,
		BeaconInterval:          500 * time.Millisecond,
		SpeedMultipliers:        []float64{0.5, 1, 2, 5},
		AlertTTL:                3,
		LowSpeedKmh:             5,
		MinSpeedDropKmh:         30,
		AlertHold:               5 * time.Second,
		ReceivedAlertHold:       3 * time.Second,
		MinRadiusMeters:         100,
		MaxRadiusMeters:         500,
		MinSeparationMeters:     10,
		ConnectivityCellDegrees: 0.01,
		DensityCellDegrees:      0.002,
		NeighborTimeout:         1500 * time.Millisecond,
		StopRatePerSecond:       0.01,
		StopDuration:            4 * time.Second,
	}
}

// Validate reports the first inconsistent field.
func (c Config) Validate() error {
	switch {
	case c.VehicleCount < 0:
		return fmt.Errorf("%w: vehicle count %d is negative", ErrInvalid, c.VehicleCount)
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick interval must be positive", ErrInvalid)
	case c.BeaconInterval <= 0:
		return fmt.Errorf("%w: beacon interval must be positive", ErrInvalid)
	case len(c.SpeedMultipliers) == 0:
		return fmt.Errorf("%w: no speed multipliers", ErrInvalid)
	case c.AlertTTL < 1:
		return fmt.Errorf("%w: alert ttl %d must be at least 1", ErrInvalid, c.AlertTTL)
	case c.MinRadiusMeters <= 0 || c.MaxRadiusMeters < c.MinRadiusMeters:
		return fmt.Errorf("%w: radius bounds [%.1f, %.1f]", ErrInvalid, c.MinRadiusMeters, c.MaxRadiusMeters)
	case c.ConnectivityCellDegrees <= 0 || c.DensityCellDegrees <= 0:
		return fmt.Errorf("%w: cell sizes must be positive", ErrInvalid)
	}

	for _, m := range c.SpeedMultipliers {
		if m <= 0 {
			return fmt.Errorf("%w: speed multiplier %.2f must be positive", ErrInvalid, m)
		}
	}

	// two circles of MaxRadius can touch across a full combined range
	if c.ConnectivityCellDegrees*MetersPerDegree < 2*c.MaxRadiusMeters {
		return fmt.Errorf("%w: connectivity cell %.4f deg is smaller than combined range %.0f m",
			ErrInvalid, c.ConnectivityCellDegrees, 2*c.MaxRadiusMeters)
	}

	return nil
}

// HasMultiplier reports whether m is one of the selectable speed multipliers.
func (c Config) HasMultiplier(m float64) bool {
	for _, allowed := range c.SpeedMultipliers {
		if allowed == m {
			return true
		}
	}
	return false
}
