package progress

import (
	"context"
	"slices"
	"sync"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=progress_test

type Store interface {
	// AddMetric keeps the first metric of a source per template and kind,
	// later ones with the same source are dropped.
	AddMetric(ctx context.Context, metric Metric) error
	// ListMetrics returns the metrics of a template and kind in chronological
	// order, optionally from a lower date bound on.
	ListMetrics(ctx context.Context, templateID string, kind MetricKind, from *time.Time) ([]Metric, error)
	// BestMetric returns the best metric, the earliest one on ties.
	BestMetric(ctx context.Context, templateID string, kind MetricKind) (*Metric, error)
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	LatestSnapshot(ctx context.Context, templateID string) (*Snapshot, error)
}

var _ Store = (*MemoryStore)(nil)

type metricKey struct {
	templateID string
	kind       MetricKind
}

type MemoryStore struct {
	mu        sync.RWMutex
	metrics   map[metricKey][]Metric
	snapshots map[string][]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		metrics:   make(map[metricKey][]Metric),
		snapshots: make(map[string][]Snapshot),
	}
}

func (s *MemoryStore) AddMetric(_ context.Context, metric Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := metricKey{metric.TemplateID, metric.Kind}
	if slices.ContainsFunc(s.metrics[key], func(m Metric) bool {
		return m.SourceID == metric.SourceID
	}) {
		return nil
	}
	s.metrics[key] = append(s.metrics[key], metric)
	return nil
}

func (s *MemoryStore) ListMetrics(_ context.Context, templateID string, kind MetricKind, from *time.Time) ([]Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := make([]Metric, 0)
	for _, m := range s.metrics[metricKey{templateID, kind}] {
		if from != nil && m.Date.Before(*from) {
			continue
		}
		metrics = append(metrics, m)
	}
	slices.SortStableFunc(metrics, func(a, b Metric) int {
		return a.Date.Compare(b.Date)
	})
	return metrics, nil
}

func (s *MemoryStore) BestMetric(ctx context.Context, templateID string, kind MetricKind) (*Metric, error) {
	metrics, err := s.ListMetrics(ctx, templateID, kind, nil)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, ErrMetricNotFound
	}

	best := metrics[0]
	for _, m := range metrics[1:] {
		if kind.Better(m.Value, best.Value) {
			best = m
		}
	}
	return &best, nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshots := s.snapshots[snapshot.TemplateID]
	// saving the same performance again replaces it
	snapshots = slices.DeleteFunc(snapshots, func(existing Snapshot) bool {
		return existing.PerformanceID == snapshot.PerformanceID
	})
	s.snapshots[snapshot.TemplateID] = append(snapshots, snapshot)
	return nil
}

func (s *MemoryStore) LatestSnapshot(_ context.Context, templateID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := s.snapshots[templateID]
	if len(snapshots) == 0 {
		return nil, ErrSnapshotNotFound
	}
	// later saves win on equal dates
	latest := snapshots[0]
	for _, snapshot := range snapshots[1:] {
		if !snapshot.Date.Before(latest.Date) {
			latest = snapshot
		}
	}
	return &latest, nil
}
