package workouts

import (
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/cardio"
	"github.com/2beens/fittrack/internal/strength"

	"github.com/google/uuid"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrRouteNotFound   = errors.New("route not found")
	ErrWorkoutExists   = errors.New("workout already exists")
	ErrNoExercises     = errors.New("strength workout without exercises")
)

// Type can be one of:
//   - strength
//   - cardio
type Type string

const (
	TypeStrength Type = "strength"
	TypeCardio   Type = "cardio"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	return t == TypeStrength || t == TypeCardio
}

// Exercise is one strength performance within a workout.
type Exercise struct {
	PerformanceID uuid.UUID      `json:"performanceId"`
	TemplateID    string         `json:"templateId"`
	Sets          []strength.Set `json:"sets"`
	Stats         strength.Stats `json:"stats"`
}

// Workout is a finished, saved training. A tracked cardio workout refers to
// its route by ID; the route points are stored on their own, keyed by it.
// A strength workout carries its exercises, its TemplateID is the first one's.
type Workout struct {
	ID         uuid.UUID     `json:"id"`
	Type       Type          `json:"type"`
	Name       string        `json:"name"`
	TemplateID string        `json:"templateId"`
	Date       time.Time     `json:"date"`
	Duration   time.Duration `json:"duration"`
	Distance   float64       `json:"distance"`
	RouteID    *uuid.UUID    `json:"routeId,omitempty"`
	Manual     bool          `json:"manual"`

	Cardio    *cardio.Summary `json:"cardio,omitempty"`
	Exercises []Exercise      `json:"exercises,omitempty"`
}

type ListParams struct {
	Type *Type
	Page int
	Size int
}
