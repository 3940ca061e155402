package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
	logger        *zap.Logger
}

func NewNotificationHandler(notifications ports.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	list, err := h.notifications.ListNotifications(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.notifications.MarkNotificationRead(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
