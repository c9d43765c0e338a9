package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative vehicles", func(c *Config) { c.VehicleCount = -1 }},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"zero beacon", func(c *Config) { c.BeaconInterval = 0 }},
		{"no multipliers", func(c *Config) { c.SpeedMultipliers = nil }},
		{"negative multiplier", func(c *Config) { c.SpeedMultipliers = []float64{1, -2} }},
		{"zero ttl", func(c *Config) { c.AlertTTL = 0 }},
		{"inverted radius", func(c *Config) { c.MinRadiusMeters, c.MaxRadiusMeters = 300, 200 }},
		{"zero density cell", func(c *Config) { c.DensityCellDegrees = 0 }},
		{"cell smaller than range", func(c *Config) { c.ConnectivityCellDegrees = 0.001 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestHasMultiplier(t *testing.T) {
	c := DefaultConfig()
	assert.True(t, c.HasMultiplier(2))
	assert.False(t, c.HasMultiplier(3))
	assert.Equal(t, 500*time.Millisecond, c.BeaconInterval)
}
