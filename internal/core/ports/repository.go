package ports

import (
	"context"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

type ProfileRepository interface {
	FindProfileByID(ctx context.Context, id string) (*domain.Profile, error)
	// CreateProfile inserts p unless a row with the same id exists, then returns the stored row.
	CreateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	// UpsertProfile writes every column except role, which is only set on insert.
	UpsertProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	UpdateProfileImage(ctx context.Context, id, imageURL string) error
}

type ProgramRepository interface {
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	FindProgramByID(ctx context.Context, id string) (*domain.Program, error)
	ListProgramsByProvider(ctx context.Context, providerID string) ([]domain.Program, error)
	ListProgramIDsByProvider(ctx context.Context, providerID string) ([]string, error)
	CreateProgram(ctx context.Context, p domain.Program) error
	UpdateProgram(ctx context.Context, p domain.Program) error
	DeleteProgram(ctx context.Context, id, providerID string) error
}

type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app domain.Application, n domain.Notification, evt domain.OutboxEvent) error
	FindApplicationByID(ctx context.Context, id string) (*domain.Application, error)
	ListApplicationsByParent(ctx context.Context, parentID string) ([]domain.ApplicationWithProgram, error)
	ListApplicationsByProgramIDs(ctx context.Context, programIDs []string) ([]domain.ApplicationWithProgram, error)
	UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, n domain.Notification, evt domain.OutboxEvent) error
}

type NotificationRepository interface {
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
}
