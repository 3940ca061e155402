package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/handler"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/metrics"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/middleware"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/repository"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/adapters/storage"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/config"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := repository.Migrate(db); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
		logger.Info("database migrations applied")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddress))

	repo := repository.NewSQLRepository(db)
	imageStore := storage.NewClient(cfg.StorageURL, cfg.StorageServiceKey, cfg.StorageBucket, logger)
	appMetrics := metrics.New()

	profileService := services.NewProfileService(repo, imageStore, logger)
	catalogService := services.NewCatalogService(repo, cfg.FeaturedLimit, logger)
	applicationService := services.NewApplicationService(repo, repo, repo, appMetrics, logger)
	notificationService := services.NewNotificationService(repo)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTPublicKey, redisClient, logger)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	stopCleanup := make(chan struct{})
	rateLimiter.StartCleanup(10*time.Minute, stopCleanup)
	defer close(stopCleanup)

	router := handler.NewRouter(handler.RouterDeps{
		Profiles:       profileService,
		Catalog:        catalogService,
		Applications:   applicationService,
		Notifications:  notificationService,
		Auth:           authMiddleware,
		RateLimiter:    rateLimiter,
		Health:         handler.NewHealthHandler(db, redisClient, cfg.Version, logger),
		Metrics:        appMetrics,
		MetricsHandler: appMetrics.Handler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	server := handler.NewServer(":"+cfg.Port, router)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("server error, shutting down", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
