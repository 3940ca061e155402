package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

// ApplicationService runs the Pending -> Accepted/Rejected workflow.
//
// Two behaviours are kept on purpose: a parent may submit several applications
// for the same program, and a provider may re-decide an application that has
// already been decided (last write wins, no version check).
type ApplicationService struct {
	applicationRepo  ports.ApplicationRepository
	programRepo      ports.ProgramRepository
	notificationRepo ports.NotificationRepository
	metrics          ports.WorkflowMetrics
	logger           *zap.Logger
	now              func() time.Time
}

var _ ports.ApplicationService = (*ApplicationService)(nil)

func NewApplicationService(
	applicationRepo ports.ApplicationRepository,
	programRepo ports.ProgramRepository,
	notificationRepo ports.NotificationRepository,
	metrics ports.WorkflowMetrics,
	logger *zap.Logger,
) *ApplicationService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ApplicationService{
		applicationRepo:  applicationRepo,
		programRepo:      programRepo,
		notificationRepo: notificationRepo,
		metrics:          metrics,
		logger:           logger,
		now:              time.Now,
	}
}

// SubmitApplication creates a Pending application owned by the calling parent.
func (s *ApplicationService) SubmitApplication(ctx context.Context, actor domain.Actor, in domain.ApplicationInput) (*domain.Application, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if actor.Role != domain.RoleParent {
		return nil, domain.ErrForbidden
	}

	in.ProgramID = strings.TrimSpace(in.ProgramID)
	in.ChildName = strings.TrimSpace(in.ChildName)
	in.Interests = strings.TrimSpace(in.Interests)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	program, err := s.programRepo.FindProgramByID(ctx, in.ProgramID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	app := domain.Application{
		ID:          uuid.NewString(),
		ParentID:    actor.ID,
		ProgramID:   program.ID,
		ChildName:   in.ChildName,
		ChildAge:    in.ChildAge,
		Interests:   in.Interests,
		Status:      domain.StatusPending,
		SubmittedAt: now,
	}

	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    program.ProviderID,
		Title:     "New application",
		Message:   fmt.Sprintf("%s applied to %s", app.ChildName, program.Title),
		CreatedAt: now,
	}

	evt, err := newOutboxEvent(domain.EventApplicationSubmitted, app, program.ProviderID, now)
	if err != nil {
		return nil, err
	}

	if err := s.applicationRepo.CreateApplication(ctx, app, notification, evt); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.metrics.ApplicationSubmitted()
	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("program_id", app.ProgramID),
		zap.String("parent_id", app.ParentID),
	)
	return &app, nil
}

// ListApplicationsForParent returns the caller's applications, newest first,
// together with the caller's unread notification count.
func (s *ApplicationService) ListApplicationsForParent(ctx context.Context, actor domain.Actor) (*domain.ParentApplications, error) {
	if actor.Role != domain.RoleParent {
		return nil, domain.ErrForbidden
	}

	apps, err := s.applicationRepo.ListApplicationsByParent(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list parent applications: %w", err)
	}

	unread, err := s.notificationRepo.CountUnreadNotifications(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	return &domain.ParentApplications{
		Applications: nonNilApplications(apps),
		UnreadCount:  unread,
	}, nil
}

// ListApplicationsForProvider resolves the caller's program ids first and then
// fetches applications for exactly those ids. The two reads are not in one
// transaction; a program deleted between them is tolerated.
func (s *ApplicationService) ListApplicationsForProvider(ctx context.Context, actor domain.Actor) ([]domain.ApplicationWithProgram, error) {
	if actor.Role != domain.RoleProvider {
		return nil, domain.ErrForbidden
	}

	programIDs, err := s.programRepo.ListProgramIDsByProvider(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list provider program ids: %w", err)
	}
	if len(programIDs) == 0 {
		return []domain.ApplicationWithProgram{}, nil
	}

	apps, err := s.applicationRepo.ListApplicationsByProgramIDs(ctx, programIDs)
	if err != nil {
		return nil, fmt.Errorf("list provider applications: %w", err)
	}
	return nonNilApplications(apps), nil
}

// Decide sets an application's status to Accepted or Rejected. Only the provider
// owning the application's program may decide.
func (s *ApplicationService) Decide(ctx context.Context, actor domain.Actor, applicationID string, outcome string) (*domain.Application, error) {
	status, err := domain.ParseStatus(outcome)
	if err != nil || !status.IsDecision() {
		return nil, domain.NewValidationError("status", "must be one of: Accepted, Rejected")
	}

	app, err := s.applicationRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.FindProgramByID(ctx, app.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.ProviderID != actor.ID {
		s.logger.Warn("decision rejected: caller does not own program",
			zap.String("application_id", app.ID),
			zap.String("program_id", program.ID),
			zap.String("actor_id", actor.ID),
		)
		return nil, domain.ErrForbidden
	}

	now := s.now().UTC()
	decided := *app
	decided.Status = status

	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    app.ParentID,
		Title:     "Application " + strings.ToLower(string(status)),
		Message:   fmt.Sprintf("The application for %s to %s was %s", app.ChildName, program.Title, strings.ToLower(string(status))),
		CreatedAt: now,
	}

	evt, err := newOutboxEvent(domain.EventApplicationDecided, decided, program.ProviderID, now)
	if err != nil {
		return nil, err
	}

	if err := s.applicationRepo.UpdateApplicationStatus(ctx, app.ID, status, notification, evt); err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	s.metrics.ApplicationDecided(status)
	s.logger.Info("application decided",
		zap.String("application_id", app.ID),
		zap.String("previous_status", string(app.Status)),
		zap.String("status", string(status)),
	)
	return &decided, nil
}

func newOutboxEvent(eventType string, app domain.Application, providerID string, at time.Time) (domain.OutboxEvent, error) {
	payload, err := json.Marshal(domain.ApplicationEvent{
		Type:          eventType,
		ApplicationID: app.ID,
		ProgramID:     app.ProgramID,
		ParentID:      app.ParentID,
		ProviderID:    providerID,
		Status:        app.Status,
		OccurredAt:    at,
	})
	if err != nil {
		return domain.OutboxEvent{}, fmt.Errorf("marshal outbox event: %w", err)
	}
	return domain.OutboxEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Payload:   payload,
	}, nil
}

func nonNilApplications(apps []domain.ApplicationWithProgram) []domain.ApplicationWithProgram {
	if apps == nil {
		return []domain.ApplicationWithProgram{}
	}
	return apps
}

type noopMetrics struct{}

func (noopMetrics) ApplicationSubmitted()                       {}
func (noopMetrics) ApplicationDecided(domain.ApplicationStatus) {}
