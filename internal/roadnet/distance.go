package roadnet

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean earth radius used for all great-circle distances.
const EarthRadiusMeters = 6_371_000.0

// Distance returns the haversine great-circle distance between a and b in metres.
func Distance(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
