package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

type ApplicationHandler struct {
	applications ports.ApplicationService
	logger       *zap.Logger
}

func NewApplicationHandler(applications ports.ApplicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

// Submit ignores any parent_id in the body; the parent is always the caller.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	var in domain.ApplicationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.ProgramID != "" && !validID(in.ProgramID) {
		writeServiceError(w, r, h.logger, domain.ErrNotFound)
		return
	}

	app, err := h.applications.SubmitApplication(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, app)
}

func (h *ApplicationHandler) ListForParent(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	result, err := h.applications.ListApplicationsForParent(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *ApplicationHandler) ListForProvider(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	apps, err := h.applications.ListApplicationsForProvider(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, apps)
}

type DecisionRequest struct {
	Status string `json:"status"`
}

func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeServiceError(w, r, h.logger, domain.ErrNotFound)
		return
	}

	var req DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.applications.Decide(r.Context(), actor, id, req.Status)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, app)
}
