package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="47.7500" lon="7.3350"/>
  <node id="2" lat="47.7500" lon="7.3400"/>
  <node id="3" lat="47.7540" lon="7.3400"/>
  <way id="10">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/>
    <tag k="highway" v="residential"/>
  </way>
</osm>`

func TestConfigureLogging(t *testing.T) {
	defer func(level, format string) { logLevel, logFormat = level, format }(logLevel, logFormat)

	logLevel, logFormat = "debug", "json"
	require.NoError(t, configureLogging())
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logLevel = "loud"
	assert.Error(t, configureLogging())

	logLevel, logFormat = "info", "xml"
	assert.Error(t, configureLogging())
}

func TestNewSimulationRequiresNetwork(t *testing.T) {
	defer func(p string) { osmPath = p }(osmPath)

	osmPath = ""
	_, _, err := newSimulation(context.Background())
	assert.ErrorIs(t, err, errNoOSM)
}

func TestNewSimulationLoadsNetwork(t *testing.T) {
	defer func(p string, s int64, n int) { osmPath, seed, cfg.VehicleCount = p, s, n }(osmPath, seed, cfg.VehicleCount)

	osmPath = filepath.Join(t.TempDir(), "map.osm")
	require.NoError(t, os.WriteFile(osmPath, []byte(sampleOSM), 0o644))
	seed = 1
	cfg.VehicleCount = 2

	s, clock, err := newSimulation(context.Background())
	require.NoError(t, err)
	assert.False(t, clock.Running())
	assert.Len(t, s.Snapshot().Vehicles, 2)
}
