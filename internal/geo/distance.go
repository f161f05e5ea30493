// Package geo computes great-circle distances between catalog coordinates.
package geo

import (
	"math"

	"placeplanner/shared/go/models"
)

const earthRadiusKm = 6371.0

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b models.Coordinates) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Valid reports whether c lies within latitude/longitude bounds.
func Valid(c models.Coordinates) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Of returns the coordinates of p, or false when p has no location.
func Of(p models.Place) (models.Coordinates, bool) {
	if !p.HasLocation() {
		return models.Coordinates{}, false
	}
	return models.Coordinates{Lat: *p.Lat, Lon: *p.Lon}, true
}
