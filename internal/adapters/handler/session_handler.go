package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/middleware"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

type TokenRevoker interface {
	Revoke(ctx context.Context) error
}

type SessionHandler struct {
	profiles ports.ProfileService
	revoker  TokenRevoker
	logger   *zap.Logger
}

func NewSessionHandler(profiles ports.ProfileService, revoker TokenRevoker, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{profiles: profiles, revoker: revoker, logger: logger}
}

type SessionRequest struct {
	Role string `json:"role"`
}

type SessionResponse struct {
	Profile *domain.Profile `json:"profile"`
	Created bool            `json:"created"`
}

// Start ensures the authenticated identity has a profile. The requested role
// is only used when the profile is created.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, h.logger, domain.ErrUnauthenticated)
		return
	}

	var req SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, created, err := h.profiles.GetOrCreateProfile(r.Context(), id, req.Role)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, h.logger, status, SessionResponse{Profile: profile, Created: created})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.revoker.Revoke(r.Context()); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Logout successful"})
}
