package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

type ProgramHandler struct {
	catalog ports.CatalogService
	logger  *zap.Logger
}

func NewProgramHandler(catalog ports.CatalogService, logger *zap.Logger) *ProgramHandler {
	return &ProgramHandler{catalog: catalog, logger: logger}
}

func filterFromQuery(r *http.Request) domain.ProgramFilter {
	q := r.URL.Query()
	featured, _ := strconv.ParseBool(q.Get("featured"))
	return domain.ProgramFilter{
		Keyword:      q.Get("q"),
		Location:     q.Get("location"),
		ProgramType:  q.Get("type"),
		DeliveryMode: q.Get("delivery_mode"),
		AgeGroup:     q.Get("age_group"),
		Cost:         q.Get("cost"),
		FeaturedOnly: featured,
	}
}

func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.catalog.ListPrograms(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, programs)
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeServiceError(w, r, h.logger, domain.ErrNotFound)
		return
	}

	program, err := h.catalog.GetProgram(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, program)
}

func (h *ProgramHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	programs, err := h.catalog.ListProgramsForProvider(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, programs)
}

func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	var fields domain.ProgramFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	program, err := h.catalog.CreateProgram(r.Context(), actor, fields)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, program)
}

func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var fields domain.ProgramFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	program, err := h.catalog.UpdateProgram(r.Context(), actor, id, fields)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, program)
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.catalog.DeleteProgram(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
