package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Ledger is the append-only time series of derived metrics per exercise
// template, with the personal best ratchet on top of it.
type Ledger struct {
	// serializes check-and-append of RecordIfBest with every other write
	mu sync.Mutex

	store          Store
	cache          BestCache
	metricsManager *metrics.Manager
}

func NewLedger(store Store, cache BestCache, metricsManager *metrics.Manager) *Ledger {
	return &Ledger{
		store:          store,
		cache:          cache,
		metricsManager: metricsManager,
	}
}

// Record appends a metric unconditionally. A source contributes at most one
// metric per template and kind, so recording it again is a no-op.
func (l *Ledger) Record(
	ctx context.Context,
	templateID string,
	kind MetricKind,
	value float64,
	date time.Time,
	sourceID uuid.UUID,
) (_ *Metric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.record")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("template", templateID),
		attribute.String("kind", kind.String()),
	)

	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	best, hasBest, err := l.currentBest(ctx, templateID, kind)
	if err != nil {
		return nil, err
	}

	metric, err := l.append(ctx, templateID, kind, value, date, sourceID)
	if err != nil {
		return nil, err
	}

	if !hasBest || kind.Better(value, best) {
		l.cacheBest(ctx, templateID, kind, value)
	}
	return metric, nil
}

// RecordIfBest appends the metric only if it strictly beats the current
// personal best for its template and kind; ties never write. The returned
// flag tells whether a new best was recorded, also when the best on record
// already came from the same source.
func (l *Ledger) RecordIfBest(
	ctx context.Context,
	templateID string,
	kind MetricKind,
	value float64,
	date time.Time,
	sourceID uuid.UUID,
) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.recordifbest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("template", templateID),
		attribute.String("kind", kind.String()),
		attribute.Float64("value", value),
	)

	if !kind.IsValid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	best, hasBest, err := l.currentBest(ctx, templateID, kind)
	if err != nil {
		return false, err
	}
	if hasBest && !kind.Better(value, best) {
		// a retried save finds its own best already written
		if value == best {
			ownBest, err := l.bestFromSource(ctx, templateID, kind, sourceID)
			if err != nil {
				return false, err
			}
			span.SetAttributes(attribute.Bool("new-best", ownBest))
			return ownBest, nil
		}
		span.SetAttributes(attribute.Bool("new-best", false))
		return false, nil
	}

	if _, err := l.append(ctx, templateID, kind, value, date, sourceID); err != nil {
		return false, err
	}
	l.cacheBest(ctx, templateID, kind, value)

	span.SetAttributes(attribute.Bool("new-best", true))
	if l.metricsManager != nil {
		l.metricsManager.CounterPersonalBests.WithLabelValues(kind.String()).Inc()
	}
	log.Debugf("new personal best [%s/%s]: %f", templateID, kind, value)
	return true, nil
}

// History returns the metrics in chronological order, from the given date on
// when from is set.
func (l *Ledger) History(ctx context.Context, templateID string, kind MetricKind, from *time.Time) (_ []Metric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	history, err := l.store.ListMetrics(ctx, templateID, kind, from)
	if err != nil {
		return nil, &PersistenceError{Op: "history", Err: err}
	}
	return history, nil
}

func (l *Ledger) Best(ctx context.Context, templateID string, kind MetricKind) (*Metric, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	best, err := l.store.BestMetric(ctx, templateID, kind)
	if err != nil {
		if errors.Is(err, ErrMetricNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "best", Err: err}
	}
	return best, nil
}

// Latest returns the most recent strength snapshot of the template.
func (l *Ledger) Latest(ctx context.Context, templateID string) (*Snapshot, error) {
	snapshot, err := l.store.LatestSnapshot(ctx, templateID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "latest", Err: err}
	}
	return snapshot, nil
}

func (l *Ledger) SaveSnapshot(ctx context.Context, snapshot Snapshot) error {
	if err := l.store.SaveSnapshot(ctx, snapshot); err != nil {
		return &PersistenceError{Op: "save snapshot", Err: err}
	}
	return nil
}

func (l *Ledger) append(
	ctx context.Context,
	templateID string,
	kind MetricKind,
	value float64,
	date time.Time,
	sourceID uuid.UUID,
) (*Metric, error) {
	metric := Metric{
		ID:         uuid.New(),
		TemplateID: templateID,
		Kind:       kind,
		Value:      value,
		Date:       date,
		SourceID:   sourceID,
	}
	if err := l.store.AddMetric(ctx, metric); err != nil {
		return nil, &PersistenceError{Op: "append", Err: err}
	}
	if l.metricsManager != nil {
		l.metricsManager.CounterLedgerWrites.WithLabelValues(kind.String()).Inc()
	}
	return &metric, nil
}

// currentBest reads the cached best, falling back to the store on a miss.
// Cache failures are logged and treated as misses.
func (l *Ledger) currentBest(ctx context.Context, templateID string, kind MetricKind) (float64, bool, error) {
	if l.cache != nil {
		value, ok, err := l.cache.Get(ctx, templateID, kind)
		if err != nil {
			log.Warnf("best cache get [%s/%s]: %s", templateID, kind, err)
		} else if ok {
			return value, true, nil
		}
	}

	best, err := l.store.BestMetric(ctx, templateID, kind)
	if err != nil {
		if errors.Is(err, ErrMetricNotFound) {
			return 0, false, nil
		}
		return 0, false, &PersistenceError{Op: "best", Err: err}
	}

	l.cacheBest(ctx, templateID, kind, best.Value)
	return best.Value, true, nil
}

func (l *Ledger) bestFromSource(ctx context.Context, templateID string, kind MetricKind, sourceID uuid.UUID) (bool, error) {
	best, err := l.store.BestMetric(ctx, templateID, kind)
	if err != nil {
		if errors.Is(err, ErrMetricNotFound) {
			return false, nil
		}
		return false, &PersistenceError{Op: "best", Err: err}
	}
	return best.SourceID == sourceID, nil
}

func (l *Ledger) cacheBest(ctx context.Context, templateID string, kind MetricKind, value float64) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, templateID, kind, value); err != nil {
		log.Warnf("best cache set [%s/%s]: %s", templateID, kind, err)
	}
}
