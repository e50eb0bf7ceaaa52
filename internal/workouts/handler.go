package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/cardio"
	"github.com/2beens/fittrack/internal/progress"
	"github.com/2beens/fittrack/internal/route"
	"github.com/2beens/fittrack/internal/strength"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	FinishStrength(ctx context.Context, name string, perfs []*strength.Performance) (*StrengthResult, error)
	AddManualCardio(ctx context.Context, entry ManualCardio) (*CardioResult, error)
	History(ctx context.Context, params ListParams) (_ []Workout, total int, err error)
	Route(ctx context.Context, routeID uuid.UUID) ([]route.GeoPoint, error)
}

type SetInput struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type ExerciseInput struct {
	// ID names the performance, resubmitting it with the same ID saves it once.
	ID         *uuid.UUID `json:"id,omitempty"`
	TemplateID string     `json:"templateId"`
	Sets       []SetInput `json:"sets"`
}

type StrengthRequest struct {
	Name      string          `json:"name"`
	Date      time.Time       `json:"date"`
	Exercises []ExerciseInput `json:"exercises"`
}

type ManualCardioRequest struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	TemplateID      string     `json:"templateId"`
	Name            string     `json:"name"`
	Distance        float64    `json:"distance"`
	DurationSeconds float64    `json:"durationSeconds"`
	Date            time.Time  `json:"date"`
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleStrength(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.strength")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req StrengthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("new strength workout, unmarshal json params: %s", err)
		http.Error(w, "add strength workout failed", http.StatusBadRequest)
		return
	}
	if len(req.Exercises) == 0 {
		http.Error(w, "error, no exercises", http.StatusBadRequest)
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	perfs := make([]*strength.Performance, 0, len(req.Exercises))
	for _, exercise := range req.Exercises {
		if exercise.TemplateID == "" {
			http.Error(w, "error, template id empty", http.StatusBadRequest)
			return
		}
		id := uuid.New()
		if exercise.ID != nil {
			id = *exercise.ID
		}
		perf := strength.NewPerformanceWithID(id, exercise.TemplateID, req.Date)
		for _, set := range exercise.Sets {
			if _, err := perf.AddSet(set.Reps, set.Weight); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		perfs = append(perfs, perf)
	}

	result, err := handler.service.FinishStrength(ctx, req.Name, perfs)
	if err != nil {
		log.Errorf("finish strength workout [%s]: %s", req.Name, err)
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	log.Debugf("strength workout added: %s, %d exercises", result.Workout.ID, len(result.Exercises))
	pkg.WriteJSON(w, result, http.StatusCreated)
}

func (handler *Handler) HandleManualCardio(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.manualcardio")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req ManualCardioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("new manual cardio, unmarshal json params: %s", err)
		http.Error(w, "add cardio workout failed", http.StatusBadRequest)
		return
	}
	if req.TemplateID == "" {
		http.Error(w, "error, template id empty", http.StatusBadRequest)
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	entry := ManualCardio{
		TemplateID: req.TemplateID,
		Name:       req.Name,
		Distance:   req.Distance,
		Duration:   time.Duration(req.DurationSeconds * float64(time.Second)),
		Date:       req.Date,
	}
	if req.ID != nil {
		entry.ID = *req.ID
	}

	result, err := handler.service.AddManualCardio(ctx, entry)
	if err != nil {
		log.Errorf("add manual cardio [%s]: %s", req.TemplateID, err)
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	pkg.WriteJSON(w, result, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	vars := mux.Vars(r)

	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		log.Errorf("handle get workouts page, from <page> param: %s", err)
		http.Error(w, "parse form error, parameter <page>", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		log.Errorf("handle get workouts page, from <size> param: %s", err)
		http.Error(w, "parse form error, parameter <size>", http.StatusBadRequest)
		return
	}

	if page < 1 {
		http.Error(w, "invalid page size (has to be non-zero value)", http.StatusBadRequest)
		return
	}
	if size < 1 {
		http.Error(w, "invalid size (has to be non-zero value)", http.StatusBadRequest)
		return
	}

	params := ListParams{
		Page: page,
		Size: size,
	}
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		workoutType := Type(typeStr)
		if !workoutType.IsValid() {
			http.Error(w, "invalid workout type", http.StatusBadRequest)
			return
		}
		params.Type = &workoutType
	}

	workouts, total, err := handler.service.History(ctx, params)
	if err != nil {
		log.Errorf("list workouts error: %s", err)
		http.Error(w, "failed to get workouts", errStatus(err))
		return
	}

	pkg.WriteJSON(w, ListResponse{
		Workouts: workouts,
		Total:    total,
	}, http.StatusOK)
}

func (handler *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.route")
	defer span.End()

	routeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, invalid route id", http.StatusBadRequest)
		return
	}

	points, err := handler.service.Route(ctx, routeID)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	pkg.WriteJSON(w, points, http.StatusOK)
}

func errStatus(err error) int {
	var persistenceErr *progress.PersistenceError
	switch {
	case errors.Is(err, ErrWorkoutNotFound), errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrWorkoutExists), errors.Is(err, strength.ErrSealed):
		return http.StatusConflict
	case errors.Is(err, ErrNoExercises), errors.Is(err, strength.ErrNoSets), errors.Is(err, strength.ErrInvalidSet),
		errors.Is(err, strength.ErrInvalidReps), errors.Is(err, cardio.ErrInvalidEntry),
		errors.Is(err, progress.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.As(err, &persistenceErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
