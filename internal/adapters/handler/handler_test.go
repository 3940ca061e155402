package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/handler"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/middleware"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/services"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/mocks"
)

const (
	jwtSecret = "handler-test-secret"

	parentID    = "11111111-1111-4111-8111-111111111111"
	providerVID = "22222222-2222-4222-8222-222222222222"
	providerWID = "33333333-3333-4333-8333-333333333333"
	programGID  = "44444444-4444-4444-8444-444444444444"
)

type testEnv struct {
	router   http.Handler
	profiles *mocks.MockProfileRepository
	programs *mocks.MockProgramRepository
	apps     *mocks.MockApplicationRepository
	notes    *mocks.MockNotificationRepository
	images   *mocks.MockProfileImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	env := &testEnv{
		profiles: mocks.NewMockProfileRepository(),
		programs: mocks.NewMockProgramRepository(),
		notes:    mocks.NewMockNotificationRepository(),
		images:   mocks.NewMockProfileImageStore(),
	}
	env.apps = mocks.NewMockApplicationRepository(env.programs)

	profileSvc := services.NewProfileService(env.profiles, env.images, logger)
	env.router = handler.NewRouter(handler.RouterDeps{
		Profiles:       profileSvc,
		Catalog:        services.NewCatalogService(env.programs, services.DefaultFeaturedLimit, logger),
		Applications:   services.NewApplicationService(env.apps, env.programs, env.notes, nil, logger),
		Notifications:  services.NewNotificationService(env.notes),
		Auth:           middleware.NewAuthMiddleware(jwtSecret, nil, mocks.NewMockRedisClient(), logger),
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})
	return env
}

// seedMarketplace creates parent P, providers V and W, and program G owned by V.
func (e *testEnv) seedMarketplace() {
	e.profiles.SeedProfile(domain.Profile{ID: parentID, Name: "Parent P", Role: domain.RoleParent})
	e.profiles.SeedProfile(domain.Profile{ID: providerVID, Name: "Provider V", Role: domain.RoleProvider})
	e.profiles.SeedProfile(domain.Profile{ID: providerWID, Name: "Provider W", Role: domain.RoleProvider})
	e.programs.SeedProgram(domain.Program{
		ID: programGID, Title: "Robotics Club", Location: "Addis Ababa", ProgramType: "STEM",
		DeliveryMode: domain.DeliveryInPerson, ProviderID: providerVID, CreatedAt: time.Now(),
	})
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": userID[:8] + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestSession_CreatesProfileOnce(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/session", parentID, map[string]string{"role": "parent"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[handler.SessionResponse](t, rec)
	assert.True(t, first.Created)
	assert.Equal(t, domain.RoleParent, first.Profile.Role)

	rec = env.do(t, http.MethodPost, "/api/session", parentID, map[string]string{"role": "provider"})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[handler.SessionResponse](t, rec)
	assert.False(t, second.Created)
	assert.Equal(t, domain.RoleParent, second.Profile.Role)
}

func TestSession_InvalidRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/session", parentID, map[string]string{"role": "admin"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "validation failed", body["error"])
	assert.NotEmpty(t, body["fields"])
}

func TestRoutes_AuthorizationGates(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	tests := []struct {
		name       string
		method     string
		path       string
		userID     string
		wantStatus int
	}{
		{name: "catalog_is_public", method: http.MethodGet, path: "/api/programs", wantStatus: http.StatusOK},
		{name: "create_requires_token", method: http.MethodPost, path: "/api/programs", wantStatus: http.StatusUnauthorized},
		{name: "parent_cannot_create_program", method: http.MethodPost, path: "/api/programs", userID: parentID, wantStatus: http.StatusForbidden},
		{name: "provider_cannot_apply", method: http.MethodPost, path: "/api/applications", userID: providerVID, wantStatus: http.StatusForbidden},
		{name: "parent_cannot_list_provider_apps", method: http.MethodGet, path: "/api/provider/applications", userID: parentID, wantStatus: http.StatusForbidden},
		{name: "no_profile_yet", method: http.MethodGet, path: "/api/profile", userID: "55555555-5555-4555-8555-555555555555", wantStatus: http.StatusForbidden},
		{name: "malformed_program_id", method: http.MethodGet, path: "/api/programs/not-a-uuid", wantStatus: http.StatusNotFound},
		{name: "unknown_route", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.userID, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPrograms_CreateThenFilter(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	rec := env.do(t, http.MethodPost, "/api/programs", providerWID, map[string]any{
		"title":         "Little Painters",
		"description":   "Watercolour basics",
		"program_type":  "Arts",
		"location":      "Nairobi",
		"delivery_mode": "Online",
		"age_group":     "5-7",
		"cost":          "Free",
		"contact_email": "paint@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.Program](t, rec)
	assert.Equal(t, providerWID, created.ProviderID)

	rec = env.do(t, http.MethodGet, "/api/programs?location=Nairobi&type=Arts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Program](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = env.do(t, http.MethodGet, "/api/programs?q=robot", "", nil)
	list = decode[[]domain.Program](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, programGID, list[0].ID)
}

func TestPrograms_ProviderCannotSetFeatured(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	body := map[string]any{
		"title":         "Chess Masters",
		"description":   "Openings and endgames",
		"program_type":  "Academic",
		"location":      "Kigali",
		"delivery_mode": "In-Person",
		"age_group":     "10-14",
		"cost":          "$15/week",
		"contact_email": "chess@example.com",
		"featured":      true,
	}
	rec := env.do(t, http.MethodPost, "/api/programs", providerWID, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.Program](t, rec)
	assert.False(t, created.Featured)

	rec = env.do(t, http.MethodPut, "/api/programs/"+created.ID, providerWID, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.Program](t, rec).Featured)
}

func TestPrograms_OwnerOnlyMutation(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	rec := env.do(t, http.MethodDelete, "/api/programs/"+programGID, providerWID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/programs/"+programGID, providerVID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/programs/"+programGID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrograms_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	rec := env.do(t, http.MethodPost, "/api/programs", providerVID, map[string]any{"title": "Only a title"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.GreaterOrEqual(t, len(body["fields"].([]any)), 5)
}

func TestApplications_Workflow(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	rec := env.do(t, http.MethodPost, "/api/applications", parentID, map[string]any{
		"program_id": programGID,
		"parent_id":  providerWID,
		"child_name": "Liya",
		"child_age":  9,
		"interests":  "robots",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	app := decode[domain.Application](t, rec)
	assert.Equal(t, parentID, app.ParentID, "parent_id always comes from the caller")
	assert.Equal(t, domain.StatusPending, app.Status)

	rec = env.do(t, http.MethodGet, "/api/provider/applications", providerVID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	incoming := decode[[]domain.ApplicationWithProgram](t, rec)
	require.Len(t, incoming, 1)
	assert.Equal(t, "Robotics Club", incoming[0].Program.Title)

	rec = env.do(t, http.MethodGet, "/api/provider/applications", providerWID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	path := "/api/applications/" + app.ID + "/status"
	rec = env.do(t, http.MethodPatch, path, providerWID, map[string]string{"status": "Accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPatch, path, providerVID, map[string]string{"status": "Pending"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, path, providerVID, map[string]string{"status": "Accepted"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/parent/applications", parentID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[domain.ParentApplications](t, rec)
	require.Len(t, mine.Applications, 1)
	assert.Equal(t, domain.StatusAccepted, mine.Applications[0].Status)
}

func TestApplications_SubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	rec := env.do(t, http.MethodPost, "/api/applications", parentID, map[string]any{
		"program_id": programGID,
		"child_name": "",
		"child_age":  0,
		"interests":  "robots",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.apps.CreateCalls)
}

func TestNotifications_MarkRead(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()
	noteID := "66666666-6666-4666-8666-666666666666"
	env.notes.SeedNotification(domain.Notification{ID: noteID, UserID: parentID, Title: "Application accepted"})

	rec := env.do(t, http.MethodPost, "/api/notifications/"+noteID+"/read", providerVID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/notifications/"+noteID+"/read", parentID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/notifications", parentID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Notification](t, rec)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}

func TestProfile_UploadImage(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "me.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake image bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profile/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, providerVID))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]string](t, rec)
	assert.Equal(t, resp["profile_image_url"], env.profiles.ImageUpdates[providerVID])
}

func TestProfile_PublicHidesContactDetails(t *testing.T) {
	env := newTestEnv(t)
	env.profiles.SeedProfile(domain.Profile{ID: providerVID, Role: domain.RoleProvider, Email: "v@example.com"})
	env.profiles.SeedProfile(domain.Profile{ID: parentID, Role: domain.RoleParent})

	rec := env.do(t, http.MethodGet, "/api/providers/"+providerVID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.Profile](t, rec).Email)

	rec = env.do(t, http.MethodGet, "/api/providers/"+parentID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedMarketplace()
	tok := token(t, parentID)

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send(http.MethodGet, "/api/profile"))
	require.Equal(t, http.StatusOK, send(http.MethodPost, "/auth/logout"))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/profile"))
}

type fakeDB struct{ err error }

func (f fakeDB) PingContext(ctx context.Context) error { return f.err }

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		redisErr   error
		wantStatus int
		wantState  string
	}{
		{name: "all_up", wantStatus: http.StatusOK, wantState: "UP"},
		{name: "database_down", dbErr: errors.New("refused"), wantStatus: http.StatusServiceUnavailable, wantState: "DOWN"},
		{name: "redis_down", redisErr: errors.New("refused"), wantStatus: http.StatusServiceUnavailable, wantState: "DOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redisClient := mocks.NewMockRedisClient()
			redisClient.PingError = tt.redisErr
			h := handler.NewHealthHandler(fakeDB{err: tt.dbErr}, redisClient, "1.2.3", zap.NewNop())

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode[handler.HealthResponse](t, rec)
			assert.Equal(t, tt.wantState, resp.Status)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Len(t, resp.Checks, 2)
		})
	}
}
