package strength

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinBrzyckiReps and MaxBrzyckiReps bound the rep counts the Brzycki
	// estimate is defined for; the denominator 37 - reps must stay positive.
	MinBrzyckiReps = 1
	MaxBrzyckiReps = 36
)

var (
	ErrInvalidReps = errors.New("reps outside one rep max range")
	ErrNoSets      = errors.New("no sets")
)

// Stats summarizes the sets of one performance.
type Stats struct {
	MaxWeight     float64 `json:"maxWeight"`
	MaxReps       int     `json:"maxReps"`
	TotalVolume   float64 `json:"totalVolume"`
	AverageWeight float64 `json:"averageWeight"`
	OneRepMax     float64 `json:"oneRepMax"`
	BestSet       Set     `json:"bestSet"`
	SetCount      int     `json:"setCount"`
}

// OneRepMax estimates the one rep max with the Brzycki formula:
// weight * 36 / (37 - reps).
func OneRepMax(weight float64, reps int) (float64, error) {
	if reps < MinBrzyckiReps || reps > MaxBrzyckiReps {
		return 0, fmt.Errorf("%w: %d", ErrInvalidReps, reps)
	}
	return weight * 36 / (37 - float64(reps)), nil
}

// Derive computes the stats of a set list. The best set is the one with the
// highest weight * reps; on a tie the earlier set wins. The one rep max is
// estimated from the best set with its reps clamped to the Brzycki range.
func Derive(sets []Set) (Stats, error) {
	if len(sets) == 0 {
		return Stats{}, ErrNoSets
	}

	weights := make([]float64, len(sets))
	stats := Stats{
		BestSet:  sets[0],
		SetCount: len(sets),
	}
	for i, s := range sets {
		weights[i] = s.Weight
		stats.TotalVolume += s.Volume()
		if s.Reps > stats.MaxReps {
			stats.MaxReps = s.Reps
		}
		if s.Volume() > stats.BestSet.Volume() {
			stats.BestSet = s
		}
	}
	stats.MaxWeight = floats.Max(weights)
	stats.AverageWeight = stat.Mean(weights, nil)

	if stats.BestSet.Volume() > 0 {
		reps := min(max(stats.BestSet.Reps, MinBrzyckiReps), MaxBrzyckiReps)
		// reps are clamped into range, the error cannot happen
		stats.OneRepMax, _ = OneRepMax(stats.BestSet.Weight, reps)
	}

	return stats, nil
}
