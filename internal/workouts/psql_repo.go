package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/cardio"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/route"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var _ Repo = (*PsqlRepo)(nil)

var routePointColumns = []string{"route_id", "sequence", "latitude", "longitude", "elevation", "timestamp"}

type PsqlRepo struct {
	db db.Querier
}

func NewPsqlRepo(db db.Querier) *PsqlRepo {
	return &PsqlRepo{
		db: db,
	}
}

// workoutDetails is the jsonb payload of the derived results.
type workoutDetails struct {
	Cardio    *cardio.Summary `json:"cardio,omitempty"`
	Exercises []Exercise      `json:"exercises,omitempty"`
}

// Add stores the workout and its route points in one transaction. Points are
// bulk copied, keyed by the workout's route ID.
func (r *PsqlRepo) Add(ctx context.Context, workout Workout, points []route.GeoPoint) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("workout.id", workout.ID.String()),
		attribute.String("workout.type", workout.Type.String()),
		attribute.Int("route.points", len(points)),
	)

	if len(points) > 0 && workout.RouteID == nil {
		return errors.New("route points given without route id")
	}

	detailsJson, err := json.Marshal(workoutDetails{
		Cardio:    workout.Cardio,
		Exercises: workout.Exercises,
	})
	if err != nil {
		return fmt.Errorf("marshal workout details: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if len(points) > 0 {
		copied, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"route_point"},
			routePointColumns,
			pgx.CopyFromSlice(len(points), func(i int) ([]any, error) {
				p := points[i]
				return []any{*workout.RouteID, p.Sequence, p.Latitude, p.Longitude, p.Elevation, p.Timestamp}, nil
			}),
		)
		if err != nil {
			if pkg.IsUniqueViolationError(err) {
				return fmt.Errorf("%w: route %s", ErrWorkoutExists, workout.RouteID)
			}
			return fmt.Errorf("copy route points: %w", err)
		}
		span.SetAttributes(attribute.Int64("route.copied", copied))
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO workout
				(id, type, name, template_id, date, duration_ms, distance, route_id, manual, summary)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		workout.ID, workout.Type.String(), workout.Name, workout.TemplateID, workout.Date,
		workout.Duration.Milliseconds(), workout.Distance, workout.RouteID, workout.Manual, detailsJson,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return fmt.Errorf("%w: %s", ErrWorkoutExists, workout.ID)
		}
		return fmt.Errorf("insert workout: %w", err)
	}

	return nil
}

func (r *PsqlRepo) Get(ctx context.Context, id uuid.UUID) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id.String()))

	row := r.db.QueryRow(ctx, `
		SELECT id, type, name, template_id, date, duration_ms, distance, route_id, manual, summary
		FROM workout
		WHERE id = $1
	`, id)
	workout, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *PsqlRepo) Route(ctx context.Context, routeID uuid.UUID) (_ []route.GeoPoint, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.route")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("route.id", routeID.String()))

	rows, err := r.db.Query(ctx, `
		SELECT sequence, latitude, longitude, elevation, timestamp
		FROM route_point
		WHERE route_id = $1
		ORDER BY sequence ASC
	`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]route.GeoPoint, 0)
	for rows.Next() {
		var p route.GeoPoint
		if err := rows.Scan(&p.Sequence, &p.Latitude, &p.Longitude, &p.Elevation, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, ErrRouteNotFound
	}
	return points, nil
}

func (r *PsqlRepo) List(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("page", params.Page),
		attribute.Int("size", params.Size),
	)

	var workoutType *string
	if params.Type != nil {
		t := params.Type.String()
		workoutType = &t
		span.SetAttributes(attribute.String("type", t))
	}

	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM workout
		WHERE ($1::text IS NULL OR type = $1);
	`, workoutType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, type, name, template_id, date, duration_ms, distance, route_id, manual, summary
		FROM workout
		WHERE ($1::text IS NULL OR type = $1)
		ORDER BY date DESC
		LIMIT $2 OFFSET $3;
	`,
		workoutType,
		params.Size, params.Size*(params.Page-1),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	workouts := make([]Workout, 0)
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, workout)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return workouts, total, nil
}

func scanWorkout(row pgx.Row) (Workout, error) {
	var (
		workout     Workout
		workoutType string
		durationMs  int64
		detailsJson []byte
	)
	if err := row.Scan(
		&workout.ID, &workoutType, &workout.Name, &workout.TemplateID, &workout.Date,
		&durationMs, &workout.Distance, &workout.RouteID, &workout.Manual, &detailsJson,
	); err != nil {
		return Workout{}, err
	}

	workout.Type = Type(workoutType)
	workout.Duration = time.Duration(durationMs) * time.Millisecond

	var details workoutDetails
	if len(detailsJson) > 0 {
		if err := json.Unmarshal(detailsJson, &details); err != nil {
			return Workout{}, fmt.Errorf("unmarshal workout details: %w", err)
		}
	}
	workout.Cardio = details.Cardio
	workout.Exercises = details.Exercises
	return workout, nil
}
