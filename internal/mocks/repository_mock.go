// Package mocks provides in-memory implementations of the port interfaces for tests.
// Each mock records its calls and supports error injection.
package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

// MockProfileRepository implements ports.ProfileRepository.
type MockProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile

	CreateProfileCalls []domain.Profile
	UpsertProfileCalls []domain.Profile
	ImageUpdates       map[string]string

	FindError   error
	CreateError error
	UpsertError error
	ImageError  error
}

var _ ports.ProfileRepository = (*MockProfileRepository)(nil)

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		profiles:     make(map[string]*domain.Profile),
		ImageUpdates: make(map[string]string),
	}
}

// SeedProfile adds a profile for test setup.
func (m *MockProfileRepository) SeedProfile(p domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = &p
}

func (m *MockProfileRepository) FindProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepository) CreateProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateProfileCalls = append(m.CreateProfileCalls, p)
	if m.CreateError != nil {
		return nil, m.CreateError
	}

	if existing, ok := m.profiles[p.ID]; ok {
		cp := *existing
		return &cp, nil
	}
	m.profiles[p.ID] = &p
	cp := p
	return &cp, nil
}

func (m *MockProfileRepository) UpsertProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertProfileCalls = append(m.UpsertProfileCalls, p)
	if m.UpsertError != nil {
		return nil, m.UpsertError
	}

	if existing, ok := m.profiles[p.ID]; ok {
		p.Role = existing.Role
		p.Verified = existing.Verified
		p.ProfileImageURL = existing.ProfileImageURL
	}
	m.profiles[p.ID] = &p
	cp := p
	return &cp, nil
}

func (m *MockProfileRepository) UpdateProfileImage(ctx context.Context, id, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ImageError != nil {
		return m.ImageError
	}
	p, ok := m.profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ProfileImageURL = imageURL
	m.ImageUpdates[id] = imageURL
	return nil
}

// MockProgramRepository implements ports.ProgramRepository.
type MockProgramRepository struct {
	mu       sync.RWMutex
	programs []domain.Program

	ListIDsCalls []string
	DeleteCalls  []string

	ListError   error
	FindError   error
	ListIDsErr  error
	CreateError error
	UpdateError error
	DeleteError error
}

var _ ports.ProgramRepository = (*MockProgramRepository)(nil)

func NewMockProgramRepository() *MockProgramRepository {
	return &MockProgramRepository{}
}

// SeedProgram appends a program for test setup. Fetch order is seed order.
func (m *MockProgramRepository) SeedProgram(p domain.Program) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs = append(m.programs, p)
}

func (m *MockProgramRepository) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Program, len(m.programs))
	copy(out, m.programs)
	return out, nil
}

func (m *MockProgramRepository) FindProgramByID(ctx context.Context, id string) (*domain.Program, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.programs {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockProgramRepository) ListProgramsByProvider(ctx context.Context, providerID string) ([]domain.Program, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Program
	for _, p := range m.programs {
		if p.ProviderID == providerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockProgramRepository) ListProgramIDsByProvider(ctx context.Context, providerID string) ([]string, error) {
	m.mu.Lock()
	m.ListIDsCalls = append(m.ListIDsCalls, providerID)
	m.mu.Unlock()

	if m.ListIDsErr != nil {
		return nil, m.ListIDsErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for _, p := range m.programs {
		if p.ProviderID == providerID {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (m *MockProgramRepository) CreateProgram(ctx context.Context, p domain.Program) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs = append(m.programs, p)
	return nil
}

func (m *MockProgramRepository) UpdateProgram(ctx context.Context, p domain.Program) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.programs {
		if m.programs[i].ID == p.ID && m.programs[i].ProviderID == p.ProviderID {
			m.programs[i] = p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockProgramRepository) DeleteProgram(ctx context.Context, id, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	for i := range m.programs {
		if m.programs[i].ID == id && m.programs[i].ProviderID == providerID {
			m.programs = append(m.programs[:i], m.programs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MockApplicationRepository implements ports.ApplicationRepository. Program
// summaries are joined from the given program repository.
type MockApplicationRepository struct {
	mu           sync.RWMutex
	applications map[string]*domain.Application
	programs     *MockProgramRepository

	CreateCalls       []domain.Application
	StatusUpdateCalls []domain.ApplicationStatus
	Notifications     []domain.Notification
	Events            []domain.OutboxEvent

	CreateError error
	FindError   error
	ListError   error
	UpdateError error
}

var _ ports.ApplicationRepository = (*MockApplicationRepository)(nil)

func NewMockApplicationRepository(programs *MockProgramRepository) *MockApplicationRepository {
	return &MockApplicationRepository{
		applications: make(map[string]*domain.Application),
		programs:     programs,
	}
}

func (m *MockApplicationRepository) SeedApplication(app domain.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[app.ID] = &app
}

func (m *MockApplicationRepository) CreateApplication(ctx context.Context, app domain.Application, n domain.Notification, evt domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, app)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.applications[app.ID] = &app
	m.Notifications = append(m.Notifications, n)
	m.Events = append(m.Events, evt)
	return nil
}

func (m *MockApplicationRepository) FindApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *MockApplicationRepository) ListApplicationsByParent(ctx context.Context, parentID string) ([]domain.ApplicationWithProgram, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.list(func(a *domain.Application) bool { return a.ParentID == parentID }), nil
}

func (m *MockApplicationRepository) ListApplicationsByProgramIDs(ctx context.Context, programIDs []string) ([]domain.ApplicationWithProgram, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	set := make(map[string]struct{}, len(programIDs))
	for _, id := range programIDs {
		set[id] = struct{}{}
	}
	return m.list(func(a *domain.Application) bool {
		_, ok := set[a.ProgramID]
		return ok
	}), nil
}

func (m *MockApplicationRepository) list(keep func(*domain.Application) bool) []domain.ApplicationWithProgram {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.ApplicationWithProgram
	for _, a := range m.applications {
		if !keep(a) {
			continue
		}
		row := domain.ApplicationWithProgram{Application: *a}
		if m.programs != nil {
			if p, err := m.programs.FindProgramByID(context.Background(), a.ProgramID); err == nil {
				row.Program = domain.ProgramSummary{ID: p.ID, Title: p.Title, Location: p.Location, ProviderID: p.ProviderID}
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

func (m *MockApplicationRepository) UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus, n domain.Notification, evt domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StatusUpdateCalls = append(m.StatusUpdateCalls, status)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	app, ok := m.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	app.Status = status
	m.Notifications = append(m.Notifications, n)
	m.Events = append(m.Events, evt)
	return nil
}

// MockNotificationRepository implements ports.NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []domain.Notification

	CountError error
	ListError  error
}

var _ ports.NotificationRepository = (*MockNotificationRepository)(nil)

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) SeedNotification(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

func (m *MockNotificationRepository) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockNotificationRepository) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}
