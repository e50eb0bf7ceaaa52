package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*PsqlStore)(nil)

type PsqlStore struct {
	db db.Querier
}

func NewPsqlStore(db db.Querier) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) AddMetric(ctx context.Context, metric Metric) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.metric.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("template", metric.TemplateID),
		attribute.String("kind", metric.Kind.String()),
	)

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO progress_metric
				(id, template_id, kind, value, date, source_id)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (template_id, kind, source_id) DO NOTHING;`,
		metric.ID, metric.TemplateID, metric.Kind.String(), metric.Value, metric.Date, metric.SourceID,
	)
	if err != nil {
		return fmt.Errorf("insert metric: %w", err)
	}
	return nil
}

func (s *PsqlStore) ListMetrics(ctx context.Context, templateID string, kind MetricKind, from *time.Time) (_ []Metric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.metric.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("template", templateID),
		attribute.String("kind", kind.String()),
	)
	if from != nil {
		span.SetAttributes(attribute.String("from", from.String()))
	}

	rows, err := s.db.Query(
		ctx,
		`SELECT id, template_id, kind, value, date, source_id
			FROM progress_metric
			WHERE template_id = $1
			  AND kind = $2
			  AND ($3::timestamptz IS NULL OR date >= $3)
			ORDER BY date ASC, recorded_at ASC;`,
		templateID, kind.String(), from,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := make([]Metric, 0)
	for rows.Next() {
		metric, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		metrics = append(metrics, metric)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metrics, nil
}

func (s *PsqlStore) BestMetric(ctx context.Context, templateID string, kind MetricKind) (_ *Metric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.metric.best")
	defer func() {
		if errors.Is(err, ErrMetricNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("template", templateID),
		attribute.String("kind", kind.String()),
	)

	order := "value DESC"
	if kind.LowerIsBetter() {
		order = "value ASC"
	}

	row := s.db.QueryRow(
		ctx,
		`SELECT id, template_id, kind, value, date, source_id
			FROM progress_metric
			WHERE template_id = $1 AND kind = $2
			ORDER BY `+order+`, date ASC, recorded_at ASC
			LIMIT 1;`,
		templateID, kind.String(),
	)
	metric, err := scanMetric(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMetricNotFound
		}
		return nil, err
	}
	return &metric, nil
}

func (s *PsqlStore) SaveSnapshot(ctx context.Context, snapshot Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.snapshot.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template", snapshot.TemplateID))

	statsJson, err := json.Marshal(snapshot.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO strength_snapshot (performance_id, template_id, date, stats)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (performance_id)
			DO UPDATE SET template_id = $2, date = $3, stats = $4, saved_at = now();`,
		snapshot.PerformanceID, snapshot.TemplateID, snapshot.Date, statsJson,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *PsqlStore) LatestSnapshot(ctx context.Context, templateID string) (_ *Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.snapshot.latest")
	defer func() {
		if errors.Is(err, ErrSnapshotNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template", templateID))

	snapshot := &Snapshot{}
	var statsJson []byte
	err = s.db.
		QueryRow(ctx, `
			SELECT performance_id, template_id, date, stats
			FROM strength_snapshot
			WHERE template_id = $1
			ORDER BY date DESC, saved_at DESC
			LIMIT 1;
		`, templateID).
		Scan(&snapshot.PerformanceID, &snapshot.TemplateID, &snapshot.Date, &statsJson)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(statsJson, &snapshot.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	return snapshot, nil
}

func scanMetric(row pgx.Row) (Metric, error) {
	var (
		metric Metric
		kind   string
	)
	if err := row.Scan(
		&metric.ID, &metric.TemplateID, &kind, &metric.Value, &metric.Date, &metric.SourceID,
	); err != nil {
		return Metric{}, err
	}
	metric.Kind = MetricKind(kind)
	return metric, nil
}
