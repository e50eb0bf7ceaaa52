package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/cardio"
	"github.com/2beens/fittrack/internal/progress"
	"github.com/2beens/fittrack/internal/route"
	"github.com/2beens/fittrack/internal/strength"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/tracking"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

// Repo stores finished workouts and their route points.
type Repo interface {
	Add(ctx context.Context, workout Workout, points []route.GeoPoint) error
	Get(ctx context.Context, id uuid.UUID) (*Workout, error)
	Route(ctx context.Context, routeID uuid.UUID) ([]route.GeoPoint, error)
	List(ctx context.Context, params ListParams) (_ []Workout, total int, err error)
}

type progressLedger interface {
	Record(ctx context.Context, templateID string, kind progress.MetricKind, value float64, date time.Time, sourceID uuid.UUID) (*progress.Metric, error)
	RecordIfBest(ctx context.Context, templateID string, kind progress.MetricKind, value float64, date time.Time, sourceID uuid.UUID) (bool, error)
	SaveSnapshot(ctx context.Context, snapshot progress.Snapshot) error
}

type templateCatalog interface {
	Touch(ctx context.Context, id string, at time.Time) error
}

type ExerciseResult struct {
	Exercise
	NewBests []progress.MetricKind `json:"newBests"`
}

type StrengthResult struct {
	Workout   Workout          `json:"workout"`
	Exercises []ExerciseResult `json:"exercises"`
}

type CardioResult struct {
	Workout  Workout               `json:"workout"`
	Summary  cardio.Summary        `json:"summary"`
	NewBests []progress.MetricKind `json:"newBests"`
}

type ManualCardio struct {
	// ID is optional, a resubmitted entry with the same ID is saved once.
	ID         uuid.UUID     `json:"id"`
	TemplateID string        `json:"templateId"`
	Name       string        `json:"name"`
	Distance   float64       `json:"distance"`
	Duration   time.Duration `json:"duration"`
	Date       time.Time     `json:"date"`
}

// Service glues the derivations to storage: it saves finished workouts and
// feeds their derived values to the progress ledger.
//
// Every save writes the ledger first and the workout row last, with IDs that
// are stable across attempts, so a save that failed half way can be retried.
type Service struct {
	repo           Repo
	ledger         progressLedger
	templates      templateCatalog
	metricsManager *metrics.Manager
}

func NewService(repo Repo, ledger progressLedger, templates templateCatalog, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		ledger:         ledger,
		templates:      templates,
		metricsManager: metricsManager,
	}
}

// FinishStrength seals the performances and saves them as one workout. Each
// performance gets its own snapshot and metrics: volume and average weight
// are always recorded, 1RM, max weight and max reps only as new bests.
func (s *Service) FinishStrength(ctx context.Context, name string, perfs []*strength.Performance) (_ *StrengthResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.finish.strength")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercises", len(perfs)))

	if len(perfs) == 0 {
		return nil, ErrNoExercises
	}

	exercises := make([]Exercise, 0, len(perfs))
	for _, perf := range perfs {
		perf.Seal()
		sets := perf.Sets()
		stats, err := strength.Derive(sets)
		if err != nil {
			return nil, fmt.Errorf("derive strength stats [%s]: %w", perf.TemplateID, err)
		}
		exercises = append(exercises, Exercise{
			PerformanceID: perf.ID,
			TemplateID:    perf.TemplateID,
			Sets:          sets,
			Stats:         stats,
		})
	}

	first := perfs[0]
	if name == "" {
		name = first.TemplateID
	}
	workout := Workout{
		ID:         strengthWorkoutID(perfs),
		Type:       TypeStrength,
		Name:       name,
		TemplateID: first.TemplateID,
		Date:       first.Date,
		Exercises:  exercises,
	}

	templateIDs := make([]string, 0, len(exercises))
	for _, exercise := range exercises {
		templateIDs = append(templateIDs, exercise.TemplateID)
	}
	if err := s.touchTemplates(ctx, templateIDs...); err != nil {
		return nil, err
	}

	results := make([]ExerciseResult, 0, len(exercises))
	for i, exercise := range exercises {
		newBests, err := s.recordStrength(ctx, perfs[i], exercise.Stats)
		if err != nil {
			return nil, err
		}
		results = append(results, ExerciseResult{
			Exercise: exercise,
			NewBests: newBests,
		})
	}

	if err := s.save(ctx, workout, nil); err != nil {
		return nil, err
	}

	return &StrengthResult{
		Workout:   workout,
		Exercises: results,
	}, nil
}

func (s *Service) recordStrength(ctx context.Context, perf *strength.Performance, stats strength.Stats) ([]progress.MetricKind, error) {
	if err := s.ledger.SaveSnapshot(ctx, progress.Snapshot{
		TemplateID:    perf.TemplateID,
		PerformanceID: perf.ID,
		Date:          perf.Date,
		Stats:         stats,
	}); err != nil {
		return nil, err
	}

	rec := newRecording(s.ledger, perf.TemplateID, perf.Date, perf.ID)
	rec.record(ctx, progress.KindTotalVolume, stats.TotalVolume)
	rec.record(ctx, progress.KindAverageWeight, stats.AverageWeight)
	if stats.OneRepMax > 0 {
		rec.recordIfBest(ctx, progress.KindOneRepMax, stats.OneRepMax)
	}
	rec.recordIfBest(ctx, progress.KindMaxWeight, stats.MaxWeight)
	rec.recordIfBest(ctx, progress.KindMaxReps, float64(stats.MaxReps))
	return rec.newBests, rec.err
}

// FinishCardio saves a stopped session with its route and records the
// derived cardio metrics. The workout takes the session's ID.
func (s *Service) FinishCardio(ctx context.Context, session *tracking.Session) (_ *CardioResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.finish.cardio")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("template", session.TemplateID()),
		attribute.String("session", session.ID().String()),
	)

	summary, err := session.Summary()
	if err != nil {
		return nil, err
	}

	track := session.Track()
	routeID := track.ID()
	points := track.Points()
	workout := Workout{
		ID:         session.ID(),
		Type:       TypeCardio,
		Name:       session.TemplateID(),
		TemplateID: session.TemplateID(),
		Date:       session.StartTime(),
		Duration:   summary.Duration,
		Distance:   summary.Distance,
		RouteID:    &routeID,
		Cardio:     &summary,
	}

	newBests, err := s.recordCardio(ctx, workout, summary)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, workout, points); err != nil {
		return nil, err
	}

	log.Debugf("cardio workout %s saved, %d route points", workout.ID, len(points))
	return &CardioResult{
		Workout:  workout,
		Summary:  summary,
		NewBests: newBests,
	}, nil
}

// OnSessionComplete is the tracking.CompletionHook saving every stopped session.
func (s *Service) OnSessionComplete(ctx context.Context, session *tracking.Session) error {
	_, err := s.FinishCardio(ctx, session)
	return err
}

func (s *Service) AddManualCardio(ctx context.Context, entry ManualCardio) (_ *CardioResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.add.manualcardio")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	summary, err := cardio.DeriveManual(entry.Distance, entry.Duration)
	if err != nil {
		return nil, err
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	name := entry.Name
	if name == "" {
		name = entry.TemplateID
	}
	workout := Workout{
		ID:         entry.ID,
		Type:       TypeCardio,
		Name:       name,
		TemplateID: entry.TemplateID,
		Date:       entry.Date,
		Duration:   summary.Duration,
		Distance:   summary.Distance,
		Manual:     true,
		Cardio:     &summary,
	}

	newBests, err := s.recordCardio(ctx, workout, summary)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, workout, nil); err != nil {
		return nil, err
	}

	return &CardioResult{
		Workout:  workout,
		Summary:  summary,
		NewBests: newBests,
	}, nil
}

func (s *Service) History(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workouts, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, &progress.PersistenceError{Op: "list workouts", Err: err}
	}
	return workouts, total, nil
}

func (s *Service) Route(ctx context.Context, routeID uuid.UUID) ([]route.GeoPoint, error) {
	return s.repo.Route(ctx, routeID)
}

func (s *Service) recordCardio(ctx context.Context, workout Workout, summary cardio.Summary) ([]progress.MetricKind, error) {
	if err := s.touchTemplates(ctx, workout.TemplateID); err != nil {
		return nil, err
	}

	rec := newRecording(s.ledger, workout.TemplateID, workout.Date, workout.ID)

	if summary.Distance > 0 {
		rec.recordTracked(ctx, progress.KindDistance, summary.Distance)
		rec.record(ctx, progress.KindAveragePace, summary.AveragePace)
	} else {
		rec.record(ctx, progress.KindDistance, 0)
	}
	rec.record(ctx, progress.KindDuration, summary.Duration.Minutes())
	if summary.ElevationGain != nil {
		rec.record(ctx, progress.KindElevationGain, *summary.ElevationGain)
	}
	if summary.BestPace != nil && *summary.BestPace > 0 {
		rec.recordIfBest(ctx, progress.KindBestPace, *summary.BestPace)
	}

	return rec.newBests, rec.err
}

// save writes the workout row, the last step of every save. A row left by an
// earlier attempt counts as saved.
func (s *Service) save(ctx context.Context, workout Workout, points []route.GeoPoint) error {
	if err := s.repo.Add(ctx, workout, points); err != nil {
		if errors.Is(err, ErrWorkoutExists) {
			log.Debugf("workout %s already saved", workout.ID)
			return nil
		}
		return &progress.PersistenceError{Op: "add workout", Err: err}
	}
	s.countWorkout(workout)
	return nil
}

func (s *Service) touchTemplates(ctx context.Context, templateIDs ...string) error {
	if s.templates == nil {
		return nil
	}
	now := time.Now()
	for _, id := range templateIDs {
		if err := s.templates.Touch(ctx, id, now); err != nil {
			return &progress.PersistenceError{Op: "touch template", Err: err}
		}
	}
	return nil
}

// strengthWorkoutID is derived from the performance IDs, so saving the same
// performances again names the same workout.
func strengthWorkoutID(perfs []*strength.Performance) uuid.UUID {
	data := make([]byte, 0, len(perfs)*16)
	for _, perf := range perfs {
		data = append(data, perf.ID[:]...)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, data)
}

func (s *Service) countWorkout(workout Workout) {
	if s.metricsManager != nil {
		s.metricsManager.CounterWorkouts.WithLabelValues(workout.Type.String()).Inc()
	}
}

// recording writes the metrics of one workout, stopping at the first error.
type recording struct {
	ledger     progressLedger
	templateID string
	date       time.Time
	sourceID   uuid.UUID

	newBests []progress.MetricKind
	err      error
}

func newRecording(ledger progressLedger, templateID string, date time.Time, sourceID uuid.UUID) *recording {
	return &recording{
		ledger:     ledger,
		templateID: templateID,
		date:       date,
		sourceID:   sourceID,
		newBests:   make([]progress.MetricKind, 0),
	}
}

func (r *recording) record(ctx context.Context, kind progress.MetricKind, value float64) {
	if r.err != nil {
		return
	}
	if _, err := r.ledger.Record(ctx, r.templateID, kind, value, r.date, r.sourceID); err != nil {
		r.err = fmt.Errorf("record %s: %w", kind, err)
	}
}

func (r *recording) recordIfBest(ctx context.Context, kind progress.MetricKind, value float64) bool {
	if r.err != nil {
		return false
	}
	isBest, err := r.ledger.RecordIfBest(ctx, r.templateID, kind, value, r.date, r.sourceID)
	if err != nil {
		r.err = fmt.Errorf("record best %s: %w", kind, err)
		return false
	}
	if isBest {
		r.newBests = append(r.newBests, kind)
	}
	return isBest
}

// recordTracked appends the value exactly once, flagging it when it is a new best.
func (r *recording) recordTracked(ctx context.Context, kind progress.MetricKind, value float64) {
	if !r.recordIfBest(ctx, kind, value) {
		r.record(ctx, kind, value)
	}
}
