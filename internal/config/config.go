package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	Env            string `envconfig:"APP_ENV" default:"production"`
	Version        string `envconfig:"APP_VERSION" default:"1.0.0"`
	DatabaseURL    string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"false"`

	RedisAddress  string `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// Tokens are verified with JWTSecret (HS256) or the key at JWTPublicKeyPath (RS256).
	JWTSecret        string         `envconfig:"JWT_SECRET"`
	JWTPublicKeyPath string         `envconfig:"JWT_PUBLIC_KEY_PATH"`
	JWTPublicKey     *rsa.PublicKey `ignored:"true"`

	StorageURL        string `envconfig:"STORAGE_URL"`
	StorageServiceKey string `envconfig:"STORAGE_SERVICE_KEY"`
	StorageBucket     string `envconfig:"STORAGE_BUCKET" default:"profile-images"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	RateLimitRPS       float64  `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst     int      `envconfig:"RATE_LIMIT_BURST" default:"10"`
	FeaturedLimit      int      `envconfig:"FEATURED_LIMIT" default:"3"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DB_CONNECTION_STRING environment variable is required")
	}
	if cfg.JWTSecret == "" && cfg.JWTPublicKeyPath == "" {
		return nil, errors.New("one of JWT_SECRET or JWT_PUBLIC_KEY_PATH is required")
	}
	if cfg.JWTPublicKeyPath != "" {
		publicKey, err := loadPublicKey(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load public key: %w", err)
		}
		cfg.JWTPublicKey = publicKey
	}

	if cfg.FeaturedLimit <= 0 {
		return nil, errors.New("FEATURED_LIMIT must be positive")
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}

// NewLogger builds the process logger. Development gets the console encoder.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
