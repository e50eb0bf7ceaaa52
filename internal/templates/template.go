package templates

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTemplateNotFound = errors.New("exercise template not found")
	ErrTemplateExists   = errors.New("exercise template already exists")
)

// Template is a named exercise that workouts and progress metrics are filed
// under. LastUsed moves forward whenever a workout with it is saved.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

//go:generate mockgen -source=$GOFILE -destination=template_mocks_test.go -package=templates_test

// Repo is the exercise template catalog.
type Repo interface {
	Add(ctx context.Context, template Template) error
	Get(ctx context.Context, id string) (*Template, error)
	FindByName(ctx context.Context, name string) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	// Touch moves the template's last use forward to at, adding the template
	// named after its ID when the catalog does not know it yet.
	Touch(ctx context.Context, id string, at time.Time) error
}
