package osmload

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="47.7500" lon="7.3350"/>
  <node id="2" lat="47.7510" lon="7.3350"/>
  <node id="3" lat="47.7510" lon="7.3360"/>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="highway" v="residential"/>
    <tag k="maxspeed" v="30"/>
  </way>
  <way id="101">
    <nd ref="2"/>
    <nd ref="3"/>
    <nd ref="999"/>
    <tag k="highway" v="primary"/>
    <tag k="oneway" v="yes"/>
  </way>
  <way id="102">
    <nd ref="3"/>
    <nd ref="1"/>
    <tag k="highway" v="secondary"/>
    <tag k="oneway" v="-1"/>
    <tag k="maxspeed" v="30 mph"/>
  </way>
  <way id="103">
    <nd ref="1"/>
    <nd ref="3"/>
    <tag k="highway" v="footway"/>
  </way>
</osm>`

func testLoader() *Loader {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewLoader(logrus.NewEntry(log))
}

func TestLoad(t *testing.T) {
	g, err := testLoader().Load(context.Background(), strings.NewReader(sampleOSM))
	require.NoError(t, err)

	assert.Equal(t, 3, g.NodeCount())
	// two-way residential (2) + one-way primary (1, dangling segment skipped) + reversed one-way (1)
	require.Equal(t, 4, g.EdgeCount())

	edges := g.Edges()
	assert.Equal(t, "residential", edges[0].Highway)
	assert.False(t, edges[0].Oneway)
	assert.Equal(t, edges[0].From, edges[1].To)
	assert.Equal(t, edges[0].To, edges[1].From)
	assert.InDelta(t, 111.2, edges[0].LengthMeters, 0.5)
	assert.Equal(t, 30.0, edges[0].MaxSpeedKmh)

	assert.True(t, edges[2].Oneway)
	assert.Equal(t, "primary", edges[2].Highway)
	assert.Equal(t, 50.0, edges[2].MaxSpeedKmh)

	// oneway=-1 travels against the way's node order
	rev := edges[3]
	assert.True(t, rev.Oneway)
	n1, _ := g.Node(rev.From)
	n3, _ := g.Node(rev.To)
	assert.Equal(t, int64(1), n1.ID)
	assert.Equal(t, int64(3), n3.ID)
	assert.InDelta(t, 48.28, rev.MaxSpeedKmh, 0.01)
}

func TestParseMaxSpeedKmh(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 50},
		{"80", 80},
		{"70 km/h", 70},
		{"45kph", 45},
		{"20 mph", 32.1868},
		{"none", 50},
		{"walk", 50},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseMaxSpeedKmh(tt.in), 1e-3)
		})
	}
}

func TestLoadRejectsBrokenXML(t *testing.T) {
	_, err := testLoader().Load(context.Background(), strings.NewReader("<osm><node id="))
	assert.Error(t, err)
}
