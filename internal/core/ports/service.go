package ports

import (
	"context"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

type ProfileService interface {
	GetOrCreateProfile(ctx context.Context, id domain.Identity, role string) (*domain.Profile, bool, error)
	GetProfile(ctx context.Context, actor domain.Actor) (*domain.Profile, error)
	GetPublicProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, fields domain.ProfileFields) (*domain.Profile, error)
	UploadProfileImage(ctx context.Context, actor domain.Actor, data []byte) (string, error)
	// ResolveActor turns a verified identity into an Actor using the caller's profile.
	ResolveActor(ctx context.Context, id domain.Identity) (domain.Actor, error)
}

type CatalogService interface {
	ListPrograms(ctx context.Context, filter domain.ProgramFilter) ([]domain.Program, error)
	GetProgram(ctx context.Context, id string) (*domain.Program, error)
	ListProgramsForProvider(ctx context.Context, actor domain.Actor) ([]domain.Program, error)
	CreateProgram(ctx context.Context, actor domain.Actor, fields domain.ProgramFields) (*domain.Program, error)
	UpdateProgram(ctx context.Context, actor domain.Actor, programID string, fields domain.ProgramFields) (*domain.Program, error)
	DeleteProgram(ctx context.Context, actor domain.Actor, programID string) error
}

type ApplicationService interface {
	SubmitApplication(ctx context.Context, actor domain.Actor, in domain.ApplicationInput) (*domain.Application, error)
	ListApplicationsForParent(ctx context.Context, actor domain.Actor) (*domain.ParentApplications, error)
	ListApplicationsForProvider(ctx context.Context, actor domain.Actor) ([]domain.ApplicationWithProgram, error)
	Decide(ctx context.Context, actor domain.Actor, applicationID string, outcome string) (*domain.Application, error)
}

type NotificationService interface {
	ListNotifications(ctx context.Context, actor domain.Actor) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, actor domain.Actor, id string) error
}
