package templates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var _ Repo = (*PsqlRepo)(nil)

type PsqlRepo struct {
	db db.Querier
}

func NewPsqlRepo(db db.Querier) *PsqlRepo {
	return &PsqlRepo{
		db: db,
	}
}

func (r *PsqlRepo) Add(ctx context.Context, template Template) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", template.ID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO exercise_template (id, name, category, created_at, last_used)
			VALUES ($1, $2, $3, $4, $5);`,
		template.ID, template.Name, template.Category, template.CreatedAt, template.LastUsed,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return fmt.Errorf("%w: %s", ErrTemplateExists, template.ID)
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (r *PsqlRepo) Get(ctx context.Context, id string) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", id))

	row := r.db.QueryRow(ctx, `
		SELECT id, name, category, created_at, last_used
		FROM exercise_template
		WHERE id = $1
	`, id)
	return scanOne(row)
}

// FindByName returns the most recently used template of that name.
func (r *PsqlRepo) FindByName(ctx context.Context, name string) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.find")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.name", name))

	row := r.db.QueryRow(ctx, `
		SELECT id, name, category, created_at, last_used
		FROM exercise_template
		WHERE name = $1
		ORDER BY last_used DESC
		LIMIT 1
	`, name)
	return scanOne(row)
}

func (r *PsqlRepo) List(ctx context.Context) (_ []Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, category, created_at, last_used
		FROM exercise_template
		ORDER BY last_used DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("templates [query]: %w", err)
	}
	defer rows.Close()

	list := make([]Template, 0)
	for rows.Next() {
		var template Template
		if err := rows.Scan(
			&template.ID, &template.Name, &template.Category, &template.CreatedAt, &template.LastUsed,
		); err != nil {
			return nil, fmt.Errorf("templates [rows scan]: %w", err)
		}
		list = append(list, template)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("templates [rows error]: %w", err)
	}
	return list, nil
}

func (r *PsqlRepo) Touch(ctx context.Context, id string, at time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.touch")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", id))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO exercise_template (id, name, created_at, last_used)
			VALUES ($1, $1, $2, $2)
			ON CONFLICT (id)
			DO UPDATE SET last_used = GREATEST(exercise_template.last_used, EXCLUDED.last_used);`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("touch template: %w", err)
	}
	return nil
}

func scanOne(row pgx.Row) (*Template, error) {
	var template Template
	if err := row.Scan(
		&template.ID, &template.Name, &template.Category, &template.CreatedAt, &template.LastUsed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &template, nil
}
