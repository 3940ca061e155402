package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/middleware"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/ports"
)

type Authenticator interface {
	Authenticate(next http.Handler) http.Handler
	TokenRevoker
}

type RouterDeps struct {
	Profiles      ports.ProfileService
	Catalog       ports.CatalogService
	Applications  ports.ApplicationService
	Notifications ports.NotificationService

	Auth        Authenticator
	RateLimiter *middleware.RateLimiter
	Health      *HealthHandler
	Metrics     middleware.HTTPMetrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.AllowedOrigins))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	if d.Health != nil {
		r.Get("/health", d.Health.Health)
		r.Get("/health/live", d.Health.Live)
		r.Get("/health/ready", d.Health.Ready)
	}
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	sessions := NewSessionHandler(d.Profiles, d.Auth, d.Logger)
	profiles := NewProfileHandler(d.Profiles, d.Logger)
	programs := NewProgramHandler(d.Catalog, d.Logger)
	applications := NewApplicationHandler(d.Applications, d.Logger)
	notifications := NewNotificationHandler(d.Notifications, d.Logger)

	limit := func(h http.Handler) http.Handler { return h }
	if d.RateLimiter != nil {
		limit = d.RateLimiter.Handler
	}

	anyActor := middleware.RequireActor(d.Profiles, d.Logger)
	providerOnly := middleware.RequireActor(d.Profiles, d.Logger, domain.RoleProvider)
	parentOnly := middleware.RequireActor(d.Profiles, d.Logger, domain.RoleParent)

	r.Route("/api", func(r chi.Router) {
		r.Get("/programs", programs.List)
		r.Get("/programs/{id}", programs.Get)
		r.Get("/providers/{id}", profiles.Public)

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Authenticate)
			r.With(limit).Post("/session", sessions.Start)

			r.Group(func(r chi.Router) {
				r.Use(anyActor)
				r.Get("/profile", profiles.Get)
				r.With(limit).Put("/profile", profiles.Update)
				r.With(limit).Post("/profile/image", profiles.UploadImage)
				r.Get("/notifications", notifications.List)
				r.Post("/notifications/{id}/read", notifications.MarkRead)
			})

			r.Group(func(r chi.Router) {
				r.Use(providerOnly)
				r.Get("/provider/programs", programs.ListMine)
				r.Get("/provider/applications", applications.ListForProvider)
				r.With(limit).Post("/programs", programs.Create)
				r.With(limit).Put("/programs/{id}", programs.Update)
				r.With(limit).Delete("/programs/{id}", programs.Delete)
				r.With(limit).Patch("/applications/{id}/status", applications.Decide)
			})

			r.Group(func(r chi.Router) {
				r.Use(parentOnly)
				r.With(limit).Post("/applications", applications.Submit)
				r.Get("/parent/applications", applications.ListForParent)
			})
		})
	})

	r.With(d.Auth.Authenticate).Post("/auth/logout", sessions.Logout)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, d.Logger, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, d.Logger, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// NewServer wraps the router with the timeouts the API runs with.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
