package strength

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSealed      = errors.New("performance sealed")
	ErrSetNotFound = errors.New("set not found")
	ErrInvalidSet  = errors.New("invalid set")
)

type Set struct {
	Order  int     `json:"order"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// Volume is weight times reps for a single set.
func (s Set) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// Performance is one exercise done within a workout: the template it belongs
// to and the ordered sets. Set order is always dense and 0-based.
type Performance struct {
	mu sync.Mutex

	ID         uuid.UUID
	TemplateID string
	Date       time.Time

	sets   []Set
	sealed bool
}

func NewPerformance(templateID string, date time.Time) *Performance {
	return NewPerformanceWithID(uuid.New(), templateID, date)
}

// NewPerformanceWithID keeps a caller chosen ID, so a resubmitted exercise
// maps onto the same performance.
func NewPerformanceWithID(id uuid.UUID, templateID string, date time.Time) *Performance {
	return &Performance{
		ID:         id,
		TemplateID: templateID,
		Date:       date,
		sets:       make([]Set, 0),
	}
}

func (p *Performance) AddSet(reps int, weight float64) (Set, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sealed {
		return Set{}, ErrSealed
	}
	if err := validateSet(reps, weight); err != nil {
		return Set{}, err
	}

	set := Set{
		Order:  len(p.sets),
		Reps:   reps,
		Weight: weight,
	}
	p.sets = append(p.sets, set)
	return set, nil
}

func (p *Performance) UpdateSet(order, reps int, weight float64) (Set, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sealed {
		return Set{}, ErrSealed
	}
	if order < 0 || order >= len(p.sets) {
		return Set{}, fmt.Errorf("%w: order %d", ErrSetNotFound, order)
	}
	if err := validateSet(reps, weight); err != nil {
		return Set{}, err
	}

	p.sets[order].Reps = reps
	p.sets[order].Weight = weight
	return p.sets[order], nil
}

// RemoveSet deletes the set at order and shifts the following sets down by one.
func (p *Performance) RemoveSet(order int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sealed {
		return ErrSealed
	}
	if order < 0 || order >= len(p.sets) {
		return fmt.Errorf("%w: order %d", ErrSetNotFound, order)
	}

	p.sets = slices.Delete(p.sets, order, order+1)
	for i := order; i < len(p.sets); i++ {
		p.sets[i].Order = i
	}
	return nil
}

func (p *Performance) Sets() []Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sets)
}

// Seal freezes the set list. Sealing twice is a no-op.
func (p *Performance) Seal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sealed = true
}

func (p *Performance) Sealed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sealed
}

func validateSet(reps int, weight float64) error {
	if reps < 0 || weight < 0 {
		return fmt.Errorf("%w: reps %d, weight %.2f", ErrInvalidSet, reps, weight)
	}
	return nil
}
