package route

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/geo"

	"github.com/google/uuid"
)

var (
	ErrInvalidOrder = errors.New("point out of order")
	ErrSealed       = errors.New("route sealed")
)

// Track is an append-only, ordered sequence of points belonging to one cardio session.
// Distance is kept incrementally: every accepted point adds exactly one segment.
// Track is safe for one writer and many concurrent readers.
type Track struct {
	mu sync.RWMutex

	id        uuid.UUID
	points    []GeoPoint
	distance  float64 // km
	startTime time.Time
	endTime   time.Time
	sealed    bool
}

func NewTrack(startTime time.Time) *Track {
	return NewTrackWithID(uuid.New(), startTime)
}

func NewTrackWithID(id uuid.UUID, startTime time.Time) *Track {
	return &Track{
		id:        id,
		startTime: startTime,
		points:    make([]GeoPoint, 0, 256),
	}
}

// Append adds p to the end of the track. The sequence must be greater than
// the sequence of the last point; the track is left untouched otherwise.
func (t *Track) Append(p GeoPoint) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return ErrSealed
	}

	lastSeq := 0
	if n := len(t.points); n > 0 {
		lastSeq = t.points[n-1].Sequence
	}
	if p.Sequence < lastSeq+1 {
		return fmt.Errorf("%w: sequence %d after %d", ErrInvalidOrder, p.Sequence, lastSeq)
	}

	if n := len(t.points); n > 0 {
		t.distance += geo.Distance(t.points[n-1].Coordinate(), p.Coordinate())
	}
	t.points = append(t.points, p)

	return nil
}

// Seal marks the track as finished. No appends are accepted afterwards.
func (t *Track) Seal(endTime time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return ErrSealed
	}
	t.sealed = true
	t.endTime = endTime
	return nil
}

func (t *Track) ID() uuid.UUID {
	return t.id
}

// Distance returns the cumulative distance in kilometers.
func (t *Track) Distance() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.distance
}

func (t *Track) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.points)
}

func (t *Track) StartTime() time.Time {
	return t.startTime
}

func (t *Track) EndTime() (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.endTime, t.sealed
}

func (t *Track) Sealed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sealed
}

// Points returns a copy of the points, safe to use while appends continue.
func (t *Track) Points() []GeoPoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	points := make([]GeoPoint, len(t.points))
	copy(points, t.points)
	return points
}

// LastPoint returns the most recently appended point.
func (t *Track) LastPoint() (GeoPoint, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.points) == 0 {
		return GeoPoint{}, false
	}
	return t.points[len(t.points)-1], true
}

// Splits walks the points and yields (split number, pace) pairs, where pace is
// minutes per km over each full unitKm of distance. Numbering starts at 1.
// A trailing segment shorter than unitKm is not reported.
func (t *Track) Splits(unitKm float64) iter.Seq2[int, float64] {
	points := t.Points()

	return func(yield func(int, float64) bool) {
		if unitKm <= 0 || len(points) < 2 {
			return
		}

		split := 0
		covered := 0.0
		splitStart := points[0].Timestamp
		for i := 1; i < len(points); i++ {
			covered += geo.Distance(points[i-1].Coordinate(), points[i].Coordinate())
			if covered < unitKm {
				continue
			}

			split++
			minutes := points[i].Timestamp.Sub(splitStart).Minutes()
			if !yield(split, minutes/unitKm) {
				return
			}

			covered = 0
			splitStart = points[i].Timestamp
		}
	}
}

// BestPaceSegment finds the fastest pace (minutes per km) over any window of
// consecutive points covering at least minKm. The scan keeps prefix distances
// and moves both window edges forward only, so it runs in O(n).
// Windows with no elapsed time are ignored.
func (t *Track) BestPaceSegment(minKm float64) (float64, bool) {
	points := t.Points()
	if minKm <= 0 || len(points) < 2 {
		return 0, false
	}

	prefix := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		prefix[i] = prefix[i-1] + geo.Distance(points[i-1].Coordinate(), points[i].Coordinate())
	}

	best := 0.0
	found := false
	oldest := 0
	for newest := 1; newest < len(points); newest++ {
		for oldest < newest && prefix[newest]-prefix[oldest] >= minKm {
			km := prefix[newest] - prefix[oldest]
			minutes := points[newest].Timestamp.Sub(points[oldest].Timestamp).Minutes()
			if minutes > 0 {
				pace := minutes / km
				if !found || pace < best {
					best = pace
					found = true
				}
			}
			oldest++
		}
	}

	return best, found
}

// ElevationChange sums positive and negative elevation deltas between
// consecutive points. Both values are returned as non-negative meters.
func (t *Track) ElevationChange(policy ElevationPolicy) (gain, loss float64) {
	points := t.Points()

	var prev *float64
	for _, p := range points {
		var elev float64
		switch {
		case p.Elevation != nil:
			elev = *p.Elevation
		case policy == SkipMissing:
			continue
		default:
			elev = 0
		}

		if prev != nil {
			delta := elev - *prev
			if delta > 0 {
				gain += delta
			} else {
				loss -= delta
			}
		}
		prev = &elev
	}

	return gain, loss
}
