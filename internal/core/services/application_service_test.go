package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/services"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/mocks"
)

var (
	parentP   = domain.Actor{ID: "parent-p", Email: "p@example.com", Role: domain.RoleParent}
	providerV = domain.Actor{ID: "provider-v", Email: "v@example.com", Role: domain.RoleProvider}
	providerW = domain.Actor{ID: "provider-w", Email: "w@example.com", Role: domain.RoleProvider}
)

type workflowFixture struct {
	programs      *mocks.MockProgramRepository
	applications  *mocks.MockApplicationRepository
	notifications *mocks.MockNotificationRepository
	metrics       *mocks.MockWorkflowMetrics
	service       *services.ApplicationService
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	programs := mocks.NewMockProgramRepository()
	programs.SeedProgram(domain.Program{ID: "program-g", Title: "Robotics Club", ProviderID: providerV.ID})

	applications := mocks.NewMockApplicationRepository(programs)
	notifications := mocks.NewMockNotificationRepository()
	metrics := mocks.NewMockWorkflowMetrics()

	return &workflowFixture{
		programs:      programs,
		applications:  applications,
		notifications: notifications,
		metrics:       metrics,
		service:       services.NewApplicationService(applications, programs, notifications, metrics, zap.NewNop()),
	}
}

func validInput() domain.ApplicationInput {
	return domain.ApplicationInput{
		ProgramID: "program-g",
		ChildName: "Abel",
		ChildAge:  9,
		Interests: "robotics",
	}
}

func TestApplicationService_SubmitApplication_CreatesPending(t *testing.T) {
	f := newWorkflowFixture(t)

	app, err := f.service.SubmitApplication(context.Background(), parentP, validInput())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, app.Status)
	assert.Equal(t, parentP.ID, app.ParentID)
	assert.Equal(t, "program-g", app.ProgramID)
	assert.NotEmpty(t, app.ID)
	assert.False(t, app.SubmittedAt.IsZero())

	require.Len(t, f.applications.CreateCalls, 1)
	assert.Equal(t, domain.StatusPending, f.applications.CreateCalls[0].Status)
	assert.Equal(t, 1, f.metrics.Submitted)

	require.Len(t, f.applications.Notifications, 1)
	assert.Equal(t, providerV.ID, f.applications.Notifications[0].UserID)

	require.Len(t, f.applications.Events, 1)
	assert.Equal(t, domain.EventApplicationSubmitted, f.applications.Events[0].EventType)
	var evt domain.ApplicationEvent
	require.NoError(t, json.Unmarshal(f.applications.Events[0].Payload, &evt))
	assert.Equal(t, app.ID, evt.ApplicationID)
	assert.Equal(t, providerV.ID, evt.ProviderID)
}

func TestApplicationService_SubmitApplication_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*domain.ApplicationInput)
		wantFields []string
	}{
		{
			name:       "missing_child_name",
			mutate:     func(in *domain.ApplicationInput) { in.ChildName = "   " },
			wantFields: []string{"child_name"},
		},
		{
			name:       "zero_age",
			mutate:     func(in *domain.ApplicationInput) { in.ChildAge = 0 },
			wantFields: []string{"child_age"},
		},
		{
			name:       "negative_age",
			mutate:     func(in *domain.ApplicationInput) { in.ChildAge = -3 },
			wantFields: []string{"child_age"},
		},
		{
			name:       "age_beyond_integer_column",
			mutate:     func(in *domain.ApplicationInput) { in.ChildAge = 3000000000 },
			wantFields: []string{"child_age"},
		},
		{
			name: "everything_missing",
			mutate: func(in *domain.ApplicationInput) {
				*in = domain.ApplicationInput{}
			},
			wantFields: []string{"program_id", "child_name", "child_age", "interests"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture(t)
			in := validInput()
			tt.mutate(&in)

			_, err := f.service.SubmitApplication(context.Background(), parentP, in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			var got []string
			for _, fe := range verr.Fields {
				got = append(got, fe.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
			assert.Empty(t, f.applications.CreateCalls, "nothing may be written on validation failure")
		})
	}
}

func TestApplicationService_SubmitApplication_LargeAgeWithinColumnAccepted(t *testing.T) {
	f := newWorkflowFixture(t)
	in := validInput()
	in.ChildAge = 2147483647

	app, err := f.service.SubmitApplication(context.Background(), parentP, in)

	require.NoError(t, err)
	assert.Equal(t, 2147483647, app.ChildAge)
}

func TestApplicationService_SubmitApplication_RequiresParent(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.SubmitApplication(context.Background(), providerV, validInput())

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.applications.CreateCalls)
}

func TestApplicationService_SubmitApplication_UnknownProgram(t *testing.T) {
	f := newWorkflowFixture(t)
	in := validInput()
	in.ProgramID = "missing"

	_, err := f.service.SubmitApplication(context.Background(), parentP, in)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationService_SubmitApplication_AllowsDuplicates(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	first, err := f.service.SubmitApplication(ctx, parentP, validInput())
	require.NoError(t, err)
	second, err := f.service.SubmitApplication(ctx, parentP, validInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, f.applications.CreateCalls, 2)
}

func TestApplicationService_SubmitApplication_RepositoryError(t *testing.T) {
	f := newWorkflowFixture(t)
	f.applications.CreateError = context.DeadlineExceeded

	_, err := f.service.SubmitApplication(context.Background(), parentP, validInput())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, f.metrics.Submitted)
}

func TestApplicationService_Decide_OwnerOnly(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	app, err := f.service.SubmitApplication(ctx, parentP, validInput())
	require.NoError(t, err)

	decided, err := f.service.Decide(ctx, providerV, app.ID, "Accepted")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, decided.Status)

	_, err = f.service.Decide(ctx, providerW, app.ID, "Rejected")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.Decide(ctx, parentP, app.ID, "Rejected")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.applications.FindApplicationByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status, "status must be unchanged after a rejected decision")
	assert.Equal(t, 1, f.metrics.Decisions[domain.StatusAccepted])
}

func TestApplicationService_Decide_OverwritesPriorDecision(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	app, err := f.service.SubmitApplication(ctx, parentP, validInput())
	require.NoError(t, err)

	_, err = f.service.Decide(ctx, providerV, app.ID, "Accepted")
	require.NoError(t, err)
	_, err = f.service.Decide(ctx, providerV, app.ID, "Rejected")
	require.NoError(t, err)

	stored, err := f.applications.FindApplicationByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)
	assert.Equal(t, []domain.ApplicationStatus{domain.StatusAccepted, domain.StatusRejected}, f.applications.StatusUpdateCalls)
}

func TestApplicationService_Decide_InvalidOutcome(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	app, err := f.service.SubmitApplication(ctx, parentP, validInput())
	require.NoError(t, err)

	for _, outcome := range []string{"Pending", "accepted", "Withdrawn", ""} {
		t.Run(outcome, func(t *testing.T) {
			_, err := f.service.Decide(ctx, providerV, app.ID, outcome)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, f.applications.StatusUpdateCalls)
}

func TestApplicationService_Decide_NotifiesParent(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	app, err := f.service.SubmitApplication(ctx, parentP, validInput())
	require.NoError(t, err)
	_, err = f.service.Decide(ctx, providerV, app.ID, "Rejected")
	require.NoError(t, err)

	require.Len(t, f.applications.Notifications, 2)
	assert.Equal(t, parentP.ID, f.applications.Notifications[1].UserID)
	assert.Equal(t, domain.EventApplicationDecided, f.applications.Events[1].EventType)
}

func TestApplicationService_Decide_UnknownApplication(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.Decide(context.Background(), providerV, "nope", "Accepted")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationService_ListApplicationsForProvider(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()
	f.programs.SeedProgram(domain.Program{ID: "program-h", Title: "Chess", ProviderID: providerW.ID})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.applications.SeedApplication(domain.Application{ID: "a1", ProgramID: "program-g", ParentID: parentP.ID, Status: domain.StatusPending, SubmittedAt: base})
	f.applications.SeedApplication(domain.Application{ID: "a2", ProgramID: "program-h", ParentID: parentP.ID, Status: domain.StatusPending, SubmittedAt: base.Add(time.Hour)})
	f.applications.SeedApplication(domain.Application{ID: "a3", ProgramID: "program-g", ParentID: "other", Status: domain.StatusPending, SubmittedAt: base.Add(2 * time.Hour)})

	got, err := f.service.ListApplicationsForProvider(ctx, providerV)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a3", got[0].ID)
	assert.Equal(t, "a1", got[1].ID)
	for _, a := range got {
		assert.Equal(t, "program-g", a.ProgramID)
		assert.Equal(t, "Robotics Club", a.Program.Title)
	}
}

func TestApplicationService_ListApplicationsForProvider_NoPrograms(t *testing.T) {
	f := newWorkflowFixture(t)
	lonely := domain.Actor{ID: "provider-z", Role: domain.RoleProvider}

	got, err := f.service.ListApplicationsForProvider(context.Background(), lonely)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []string{"provider-z"}, f.programs.ListIDsCalls)
}

func TestApplicationService_ListApplicationsForProvider_RequiresProvider(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.service.ListApplicationsForProvider(context.Background(), parentP)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApplicationService_ListApplicationsForParent(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.applications.SeedApplication(domain.Application{ID: "old", ProgramID: "program-g", ParentID: parentP.ID, SubmittedAt: base})
	f.applications.SeedApplication(domain.Application{ID: "new", ProgramID: "program-g", ParentID: parentP.ID, SubmittedAt: base.Add(24 * time.Hour)})
	f.applications.SeedApplication(domain.Application{ID: "theirs", ProgramID: "program-g", ParentID: "someone-else", SubmittedAt: base})
	f.notifications.SeedNotification(domain.Notification{ID: "n1", UserID: parentP.ID})
	f.notifications.SeedNotification(domain.Notification{ID: "n2", UserID: parentP.ID, IsRead: true})

	got, err := f.service.ListApplicationsForParent(ctx, parentP)
	require.NoError(t, err)

	require.Len(t, got.Applications, 2)
	assert.Equal(t, "new", got.Applications[0].ID)
	assert.Equal(t, "old", got.Applications[1].ID)
	assert.Equal(t, 1, got.UnreadCount)
}

func TestApplicationService_ListApplicationsForParent_CountError(t *testing.T) {
	f := newWorkflowFixture(t)
	f.notifications.CountError = errors.New("connection reset")

	_, err := f.service.ListApplicationsForParent(context.Background(), parentP)

	assert.ErrorContains(t, err, "connection reset")
}
