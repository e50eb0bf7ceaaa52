package route

import (
	"time"

	"github.com/2beens/fittrack/internal/geo"
)

// GeoPoint is a single accepted location sample of a route.
// Sequence defines the order within the route and is assigned on acceptance,
// never derived from Timestamp.
type GeoPoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Elevation *float64  `json:"elevation,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Sequence  int       `json:"sequence"`
}

func (p GeoPoint) Coordinate() geo.Coordinate {
	return geo.Coordinate{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

// ElevationOr returns the point elevation, or def when the sample had none.
func (p GeoPoint) ElevationOr(def float64) float64 {
	if p.Elevation == nil {
		return def
	}
	return *p.Elevation
}

// ElevationPolicy decides how points without elevation take part in gain/loss.
type ElevationPolicy int

const (
	// MissingAsZero treats a missing elevation as 0 meters.
	MissingAsZero ElevationPolicy = iota
	// SkipMissing leaves points without elevation out of the scan.
	SkipMissing
)

func (ep ElevationPolicy) String() string {
	switch ep {
	case MissingAsZero:
		return "missing_as_zero"
	case SkipMissing:
		return "skip_missing"
	default:
		return "unknown"
	}
}
