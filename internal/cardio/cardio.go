// Package cardio derives pace, splits, elevation and best effort figures
// from a finished route or from a manually entered distance and duration.
package cardio

import (
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/geo"
	"github.com/2beens/fittrack/internal/route"
)

var (
	ErrTrackNotSealed = errors.New("track not sealed")
	ErrInvalidEntry   = errors.New("invalid cardio entry")
)

type Split struct {
	Number int     `json:"number"`
	Pace   float64 `json:"pace"` // minutes per km
}

// Summary is the read-only result of a cardio derivation.
// Distances are in km, paces in minutes per km, elevation in meters.
// Route-only fields are nil for manually entered workouts.
type Summary struct {
	Distance      float64       `json:"distance"`
	Duration      time.Duration `json:"duration"`
	AveragePace   float64       `json:"averagePace"`
	BestPace      *float64      `json:"bestPace,omitempty"`
	ElevationGain *float64      `json:"elevationGain,omitempty"`
	ElevationLoss *float64      `json:"elevationLoss,omitempty"`
	Splits        []Split       `json:"splits,omitempty"`
	Manual        bool          `json:"manual"`
}

type Options struct {
	SplitKm      float64
	BestEffortKm float64
	Elevation    route.ElevationPolicy
}

// DefaultOptions reports one split per mile and looks for the best quarter mile.
func DefaultOptions() Options {
	return Options{
		SplitKm:      geo.MilesToKm(1),
		BestEffortKm: geo.MilesToKm(0.25),
		Elevation:    route.MissingAsZero,
	}
}

// Pace returns minutes per km. Zero distance gives a pace of 0.
func Pace(km float64, d time.Duration) float64 {
	if km <= 0 {
		return 0
	}
	return d.Minutes() / km
}

// Derive computes the summary of a sealed track. active is the effective
// session duration, with pauses already taken out.
func Derive(track *route.Track, active time.Duration, opts Options) (Summary, error) {
	if track == nil || !track.Sealed() {
		return Summary{}, ErrTrackNotSealed
	}
	if active < 0 {
		return Summary{}, fmt.Errorf("%w: negative duration %s", ErrInvalidEntry, active)
	}

	distance := track.Distance()
	summary := Summary{
		Distance:    distance,
		Duration:    active,
		AveragePace: Pace(distance, active),
		Splits:      make([]Split, 0),
	}

	if bestPace, ok := track.BestPaceSegment(opts.BestEffortKm); ok {
		summary.BestPace = &bestPace
	}

	gain, loss := track.ElevationChange(opts.Elevation)
	summary.ElevationGain = &gain
	summary.ElevationLoss = &loss

	for n, pace := range track.Splits(opts.SplitKm) {
		summary.Splits = append(summary.Splits, Split{Number: n, Pace: pace})
	}

	return summary, nil
}

// DeriveManual summarizes a workout entered by hand, without a route.
func DeriveManual(km float64, d time.Duration) (Summary, error) {
	if km < 0 || d < 0 {
		return Summary{}, fmt.Errorf("%w: distance %.3f, duration %s", ErrInvalidEntry, km, d)
	}

	return Summary{
		Distance:    km,
		Duration:    d,
		AveragePace: Pace(km, d),
		Manual:      true,
	}, nil
}
