package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Point represents a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance calculates the haversine great-circle distance between two points
// in kilometers.
func Distance(p1, p2 Point) float64 {
	return orbgeo.DistanceHaversine(orb.Point{p1.Lon, p1.Lat}, orb.Point{p2.Lon, p2.Lat}) / 1000.0
}

// RoundKm rounds a distance in kilometers to two decimal places.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// ValidLatitude reports whether lat is within [-90, 90].
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is within [-180, 180].
func ValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}
