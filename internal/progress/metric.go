package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/strength"

	"github.com/google/uuid"
)

var (
	ErrMetricNotFound   = errors.New("metric not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidKind      = errors.New("invalid metric kind")
)

// MetricKind can be one of:
//   - strength: 1rm, max_weight, max_reps, total_volume, average_weight
//   - cardio: distance, duration, average_pace, best_pace, elevation_gain
type MetricKind string

const (
	KindOneRepMax     MetricKind = "1rm"
	KindMaxWeight     MetricKind = "max_weight"
	KindMaxReps       MetricKind = "max_reps"
	KindTotalVolume   MetricKind = "total_volume"
	KindAverageWeight MetricKind = "average_weight"

	KindDistance      MetricKind = "distance"
	KindDuration      MetricKind = "duration"
	KindAveragePace   MetricKind = "average_pace"
	KindBestPace      MetricKind = "best_pace"
	KindElevationGain MetricKind = "elevation_gain"
)

func (k MetricKind) String() string {
	return string(k)
}

func (k MetricKind) IsValid() bool {
	switch k {
	case KindOneRepMax,
		KindMaxWeight,
		KindMaxReps,
		KindTotalVolume,
		KindAverageWeight,
		KindDistance,
		KindDuration,
		KindAveragePace,
		KindBestPace,
		KindElevationGain:
		return true
	default:
		return false
	}
}

// LowerIsBetter is true for pace kinds: minutes per km, fewer is faster.
func (k MetricKind) LowerIsBetter() bool {
	return k == KindAveragePace || k == KindBestPace
}

// Better reports whether candidate strictly beats current. Ties are never better.
func (k MetricKind) Better(candidate, current float64) bool {
	if k.LowerIsBetter() {
		return candidate < current
	}
	return candidate > current
}

func ParseMetricKind(s string) (MetricKind, error) {
	k := MetricKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Metric is one derived value, never edited once written.
type Metric struct {
	ID         uuid.UUID  `json:"id"`
	TemplateID string     `json:"templateId"`
	Kind       MetricKind `json:"kind"`
	Value      float64    `json:"value"`
	Date       time.Time  `json:"date"`
	// SourceID is the performance or workout the value was derived from.
	SourceID uuid.UUID `json:"sourceId"`
}

// Snapshot is the "last time" view of a strength exercise.
type Snapshot struct {
	TemplateID    string         `json:"templateId"`
	PerformanceID uuid.UUID      `json:"performanceId"`
	Date          time.Time      `json:"date"`
	Stats         strength.Stats `json:"stats"`
}

// PersistenceError wraps any failure of the underlying store. It is always
// recoverable by retrying or discarding the write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("progress %s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
