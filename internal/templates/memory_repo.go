package templates

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

var _ Repo = (*MemoryRepo)(nil)

type MemoryRepo struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		templates: make(map[string]Template),
	}
}

func (r *MemoryRepo) Add(_ context.Context, template Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[template.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTemplateExists, template.ID)
	}
	r.templates[template.ID] = template
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, ok := r.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return &template, nil
}

func (r *MemoryRepo) FindByName(ctx context.Context, name string) (*Template, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, template := range list {
		if template.Name == name {
			return &template, nil
		}
	}
	return nil, ErrTemplateNotFound
}

// List returns the templates most recently used first.
func (r *MemoryRepo) List(_ context.Context) ([]Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Template, 0, len(r.templates))
	for _, template := range r.templates {
		list = append(list, template)
	}
	slices.SortFunc(list, func(a, b Template) int {
		if c := b.LastUsed.Compare(a.LastUsed); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (r *MemoryRepo) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	template, ok := r.templates[id]
	if !ok {
		r.templates[id] = Template{
			ID:        id,
			Name:      id,
			CreatedAt: at,
			LastUsed:  at,
		}
		return nil
	}
	if at.After(template.LastUsed) {
		template.LastUsed = at
		r.templates[id] = template
	}
	return nil
}
