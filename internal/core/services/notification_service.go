package services

import (
	"context"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

type NotificationService struct {
	notificationRepo ports.NotificationRepository
}

var _ ports.NotificationService = (*NotificationService)(nil)

func NewNotificationService(notificationRepo ports.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) ListNotifications(ctx context.Context, actor domain.Actor) ([]domain.Notification, error) {
	ns, err := s.notificationRepo.ListNotifications(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return ns, nil
}

// MarkNotificationRead marks one of the caller's notifications read. Another
// user's notification is reported as not found.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, actor domain.Actor, id string) error {
	return s.notificationRepo.MarkNotificationRead(ctx, id, actor.ID)
}
