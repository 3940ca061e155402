package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

const maxImageUpload = 5 << 20

type ProfileHandler struct {
	profiles ports.ProfileService
	logger   *zap.Logger
}

func NewProfileHandler(profiles ports.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	var fields domain.ProfileFields
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), actor, fields)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile)
}

// UploadImage accepts a multipart form with the picture in the "image" field.
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload+1024)
	file, _, err := r.FormFile("image")
	if err != nil {
		writeServiceError(w, r, h.logger, domain.NewValidationError("image", "is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUpload+1))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "could not read image")
		return
	}
	if len(data) > maxImageUpload {
		writeServiceError(w, r, h.logger, domain.NewValidationError("image", "must be at most 5 MB"))
		return
	}

	url, err := h.profiles.UploadProfileImage(r.Context(), actor, data)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"profile_image_url": url})
}

// Public returns a provider's public profile.
func (h *ProfileHandler) Public(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeServiceError(w, r, h.logger, domain.ErrNotFound)
		return
	}

	profile, err := h.profiles.GetPublicProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile)
}
