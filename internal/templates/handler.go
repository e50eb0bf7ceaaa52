package templates

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type CreateRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

type Handler struct {
	repo Repo
}

func NewHandler(repo Repo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("new template, unmarshal json params: %s", err)
		http.Error(w, "add template failed", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "error, template name empty", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	now := time.Now()
	template := Template{
		ID:        req.ID,
		Name:      req.Name,
		Category:  req.Category,
		CreatedAt: now,
		LastUsed:  now,
	}
	if err := handler.repo.Add(ctx, template); err != nil {
		if errors.Is(err, ErrTemplateExists) {
			http.Error(w, "template already exists", http.StatusConflict)
			return
		}
		log.Errorf("add template: %s", err)
		http.Error(w, "add template failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new template added: %s [%s]", template.Name, template.ID)
	pkg.WriteJSON(w, template, http.StatusCreated)
}

// HandleList lists the catalog, most recently used first. With ?name= set it
// returns the template of that name instead.
func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.list")
	defer span.End()

	if name := r.URL.Query().Get("name"); name != "" {
		template, err := handler.repo.FindByName(ctx, name)
		if err != nil {
			writeRepoError(w, "find template", err)
			return
		}
		pkg.WriteJSON(w, template, http.StatusOK)
		return
	}

	list, err := handler.repo.List(ctx)
	if err != nil {
		writeRepoError(w, "list templates", err)
		return
	}
	pkg.WriteJSON(w, list, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, template id empty", http.StatusBadRequest)
		return
	}

	template, err := handler.repo.Get(ctx, id)
	if err != nil {
		writeRepoError(w, "get template", err)
		return
	}
	pkg.WriteJSON(w, template, http.StatusOK)
}

func writeRepoError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrTemplateNotFound) {
		http.Error(w, "template not found", http.StatusNotFound)
		return
	}
	log.Errorf("%s: %s", op, err)
	http.Error(w, op+" failed", http.StatusInternalServerError)
}
