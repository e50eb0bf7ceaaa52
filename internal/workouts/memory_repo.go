package workouts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/2beens/fittrack/internal/route"

	"github.com/google/uuid"
)

var _ Repo = (*MemoryRepo)(nil)

// MemoryRepo keeps workouts and routes in memory, e.g. for replays.
type MemoryRepo struct {
	mu       sync.RWMutex
	workouts []Workout
	routes   map[uuid.UUID][]route.GeoPoint
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		workouts: make([]Workout, 0),
		routes:   make(map[uuid.UUID][]route.GeoPoint),
	}
}

func (r *MemoryRepo) Add(_ context.Context, workout Workout, points []route.GeoPoint) error {
	if len(points) > 0 && workout.RouteID == nil {
		return errors.New("route points given without route id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.ContainsFunc(r.workouts, func(w Workout) bool { return w.ID == workout.ID }) {
		return fmt.Errorf("%w: %s", ErrWorkoutExists, workout.ID)
	}
	if len(points) > 0 {
		r.routes[*workout.RouteID] = slices.Clone(points)
	}
	r.workouts = append(r.workouts, workout)
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, id uuid.UUID) (*Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.workouts {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, ErrWorkoutNotFound
}

func (r *MemoryRepo) Route(_ context.Context, routeID uuid.UUID) ([]route.GeoPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	points, ok := r.routes[routeID]
	if !ok {
		return nil, ErrRouteNotFound
	}
	return slices.Clone(points), nil
}

// List returns the workouts newest first. Pages start at 1.
func (r *MemoryRepo) List(_ context.Context, params ListParams) ([]Workout, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]Workout, 0, len(r.workouts))
	for _, w := range r.workouts {
		if params.Type != nil && w.Type != *params.Type {
			continue
		}
		filtered = append(filtered, w)
	}
	slices.SortStableFunc(filtered, func(a, b Workout) int {
		return b.Date.Compare(a.Date)
	})

	total := len(filtered)
	start := (params.Page - 1) * params.Size
	if params.Size <= 0 || start < 0 || start >= total {
		return []Workout{}, total, nil
	}
	end := min(start+params.Size, total)
	return filtered[start:end], total, nil
}
