// Package osmload turns OpenStreetMap XML extracts into road networks.
package osmload

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/azaurus1/vanetsim/internal/roadnet"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"github.com/sirupsen/logrus"
)

var supportedHighways = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"residential": true, "unclassified": true,
	"living_street": true, "service": true,
}

var maxSpeedPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(?:\s*(km/h|kmh|mph|kph))?$`)

const kmhPerMph = 1.60934

type Loader struct {
	log *logrus.Entry
}

func NewLoader(log *logrus.Entry) *Loader {
	return &Loader{log: log.WithField("component", "osmload")}
}

func (l *Loader) LoadFile(ctx context.Context, path string) (*roadnet.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm file: %w", err)
	}
	defer f.Close()

	g, err := l.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

// Load reads every node and way, then builds edges for consecutive node
// pairs of supported highways. Segments that reference unknown nodes are
// skipped.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*roadnet.Graph, error) {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	points := make(map[osm.NodeID]orb.Point)
	var ways []*osm.Way

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			points[o.ID] = orb.Point{o.Lon, o.Lat}
		case *osm.Way:
			if supportedHighways[o.Tags.Find("highway")] {
				ways = append(ways, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm xml: %w", err)
	}

	b := roadnet.NewBuilder()
	skipped := 0
	for _, w := range ways {
		skipped += addWay(b, w, points)
	}

	g := b.Graph()
	l.log.WithFields(logrus.Fields{
		"nodes":   g.NodeCount(),
		"edges":   g.EdgeCount(),
		"skipped": skipped,
	}).Info("road network loaded")

	return g, nil
}

func addWay(b *roadnet.Builder, w *osm.Way, points map[osm.NodeID]orb.Point) int {
	onewayTag := strings.TrimSpace(w.Tags.Find("oneway"))
	reverse := onewayTag == "-1"
	oneway := reverse || parseOneway(onewayTag)
	highway := w.Tags.Find("highway")
	maxSpeed := ParseMaxSpeedKmh(w.Tags.Find("maxspeed"))
	wayID := int64(w.ID)
	n := int64(len(w.Nodes))

	skipped := 0
	for i := 0; i+1 < len(w.Nodes); i++ {
		fromID, toID := w.Nodes[i].ID, w.Nodes[i+1].ID
		fromPt, okFrom := points[fromID]
		toPt, okTo := points[toID]
		if !okFrom || !okTo {
			skipped++
			continue
		}

		from := b.AddNode(roadnet.Node{ID: int64(fromID), Point: fromPt})
		to := b.AddNode(roadnet.Node{ID: int64(toID), Point: toPt})
		length := roadnet.Distance(fromPt, toPt)

		forward := roadnet.Edge{
			ID:           wayID<<16 + int64(i),
			From:         from,
			To:           to,
			LengthMeters: length,
			Oneway:       oneway,
			MaxSpeedKmh:  maxSpeed,
			Highway:      highway,
		}

		if !reverse {
			b.AddEdge(forward)
		}
		if !oneway || reverse {
			backward := forward
			backward.ID = wayID<<16 + int64(i) + n
			backward.From, backward.To = to, from
			b.AddEdge(backward)
		}
	}

	return skipped
}

func parseOneway(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// ParseMaxSpeedKmh understands plain numbers and km/h, kmh, kph or mph
// suffixes. Anything else yields the default limit.
func ParseMaxSpeedKmh(v string) float64 {
	m := maxSpeedPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(v)))
	if m == nil {
		return roadnet.DefaultMaxSpeedKmh
	}

	speed, err := strconv.ParseFloat(m[1], 64)
	if err != nil || speed <= 0 {
		return roadnet.DefaultMaxSpeedKmh
	}
	if m[2] == "mph" {
		speed *= kmhPerMph
	}
	return speed
}
