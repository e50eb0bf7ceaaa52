// Package geo holds the great-circle math used to turn raw coordinates into distances.
package geo

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by Distance.
	EarthRadiusKm = 6371.0
	// KmPerMile converts statute miles to kilometers.
	KmPerMile = 1.609344
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the haversine distance between a and b in kilometers.
// Latitude and longitude are in degrees.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude) - toRadians(a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func MilesToKm(miles float64) float64 {
	return miles * KmPerMile
}

func KmToMiles(km float64) float64 {
	return km / KmPerMile
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
