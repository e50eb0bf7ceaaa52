package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/progress"
	"github.com/2beens/fittrack/internal/route"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

type sessionRecorder interface {
	Start(templateID string) (*Session, error)
	Current() (*Session, bool)
	Pause() error
	Resume() error
	Ingest(sample Sample) (Outcome, error)
	Stop(ctx context.Context) (*Session, error)
	Discard() error
}

var _ sessionRecorder = (*Recorder)(nil)

type StartRequest struct {
	TemplateID string `json:"templateId"`
}

type SamplesRequest struct {
	Samples []Sample `json:"samples"`
}

// SamplesResponse counts the ingested samples by outcome.
type SamplesResponse struct {
	Accepted  int `json:"accepted"`
	Ignored   int `json:"ignored"`
	Discarded int `json:"discarded"`
	Rejected  int `json:"rejected"`
}

type StopResponse struct {
	Status
	// SaveError is set when the session stopped but saving it failed.
	SaveError string `json:"saveError,omitempty"`
}

type Handler struct {
	recorder sessionRecorder
}

func NewHandler(recorder sessionRecorder) *Handler {
	return &Handler{
		recorder: recorder,
	}
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.start")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("start session, unmarshal json params: %s", err)
		http.Error(w, "start session failed", http.StatusBadRequest)
		return
	}
	if req.TemplateID == "" {
		http.Error(w, "error, template id empty", http.StatusBadRequest)
		return
	}

	session, err := handler.recorder.Start(req.TemplateID)
	if err != nil {
		log.Errorf("start session [%s]: %s", req.TemplateID, err)
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	pkg.WriteJSON(w, session.Status(), http.StatusCreated)
}

func (handler *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.current")
	defer span.End()

	session, ok := handler.recorder.Current()
	if !ok {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}

	pkg.WriteJSON(w, session.Status(), http.StatusOK)
}

func (handler *Handler) HandleCurrentRoute(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.route")
	defer span.End()

	session, ok := handler.recorder.Current()
	if !ok {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}

	points := make([]route.GeoPoint, 0)
	if track := session.Track(); track != nil {
		points = track.Points()
	}
	pkg.WriteJSON(w, points, http.StatusOK)
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.pause")
	defer span.End()

	if err := handler.recorder.Pause(); err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	handler.writeCurrentStatus(w)
}

func (handler *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.resume")
	defer span.End()

	if err := handler.recorder.Resume(); err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	handler.writeCurrentStatus(w)
}

// HandleStop completes the session. When saving fails, the session still
// counts as stopped: the status is returned with the save error and a 503.
func (handler *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.stop")
	defer span.End()

	session, err := handler.recorder.Stop(ctx)
	if session == nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	resp := StopResponse{Status: session.Status()}
	status := http.StatusOK
	if err != nil {
		log.Errorf("session %s stopped, save failed: %s", session.ID(), err)
		resp.SaveError = err.Error()
		status = errStatus(err)
	}
	pkg.WriteJSON(w, resp, status)
}

func (handler *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.discard")
	defer span.End()

	if err := handler.recorder.Discard(); err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleSamples(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.samples")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req SamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("ingest samples, unmarshal json params: %s", err)
		http.Error(w, "ingest samples failed", http.StatusBadRequest)
		return
	}

	if _, ok := handler.recorder.Current(); !ok {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}

	var resp SamplesResponse
	for _, sample := range req.Samples {
		outcome, err := handler.recorder.Ingest(sample)
		if err != nil {
			log.Debugf("sample rejected: %s", err)
		}
		switch outcome {
		case OutcomeAccepted:
			resp.Accepted++
		case OutcomeIgnored:
			resp.Ignored++
		case OutcomeDiscarded:
			resp.Discarded++
		default:
			resp.Rejected++
		}
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) writeCurrentStatus(w http.ResponseWriter) {
	session, ok := handler.recorder.Current()
	if !ok {
		http.Error(w, ErrNoSession.Error(), http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, session.Status(), http.StatusOK)
}

func errStatus(err error) int {
	var persistenceErr *progress.PersistenceError
	switch {
	case errors.Is(err, ErrAlreadyActive), errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidSample), errors.Is(err, route.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.As(err, &persistenceErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
