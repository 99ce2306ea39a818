// Package geo provides great-circle distance math for proximity checks.
package geo

import "math"

// earthRadiusMeters is the mean earth radius used by the haversine
// formula. Matches the value the Android location API derives its
// distances from, so results line up with what the mobile client sees.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// InRadius reports whether b lies within radiusMeters of a. The
// comparison is inclusive: a point exactly on the boundary counts.
func InRadius(a, b Point, radiusMeters float64) bool {
	return Distance(a, b) <= radiusMeters
}
