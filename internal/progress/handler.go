package progress

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type progressReader interface {
	History(ctx context.Context, templateID string, kind MetricKind, from *time.Time) ([]Metric, error)
	Best(ctx context.Context, templateID string, kind MetricKind) (*Metric, error)
	Latest(ctx context.Context, templateID string) (*Snapshot, error)
}

var _ progressReader = (*Ledger)(nil)

type Handler struct {
	ledger progressReader
}

func NewHandler(ledger progressReader) *Handler {
	return &Handler{
		ledger: ledger,
	}
}

// HandleHistory serves the metrics of one template and kind, oldest first.
// An optional from=YYYY-MM-DD query param limits the range.
func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.history")
	defer span.End()

	vars := mux.Vars(r)
	kind, err := ParseMetricKind(vars["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var from *time.Time
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		fromDate, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			http.Error(w, "invalid from date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		from = &fromDate
	}

	history, err := handler.ledger.History(ctx, vars["template"], kind, from)
	if err != nil {
		log.Errorf("progress history [%s/%s]: %s", vars["template"], kind, err)
		http.Error(w, "failed to get progress history", errStatus(err))
		return
	}
	if history == nil {
		history = []Metric{}
	}

	pkg.WriteJSON(w, history, http.StatusOK)
}

func (handler *Handler) HandleBest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.best")
	defer span.End()

	vars := mux.Vars(r)
	kind, err := ParseMetricKind(vars["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	best, err := handler.ledger.Best(ctx, vars["template"], kind)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	pkg.WriteJSON(w, best, http.StatusOK)
}

func (handler *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.latest")
	defer span.End()

	templateID := mux.Vars(r)["template"]
	snapshot, err := handler.ledger.Latest(ctx, templateID)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	pkg.WriteJSON(w, snapshot, http.StatusOK)
}

func errStatus(err error) int {
	var persistenceErr *PersistenceError
	switch {
	case errors.Is(err, ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, ErrMetricNotFound), errors.Is(err, ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.As(err, &persistenceErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
