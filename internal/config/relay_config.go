package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// RelayConfig holds what the outbox relay process needs.
type RelayConfig struct {
	Env                  string `envconfig:"APP_ENV" default:"production"`
	DatabaseURL          string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	RabbitMQURL          string `envconfig:"RABBITMQ_URL" required:"true"`
	ApplicationExchange  string `envconfig:"APPLICATION_EXCHANGE" default:"marketplace.applications"`
	ApplicationQueueName string `envconfig:"APPLICATION_QUEUE_NAME" default:"application-events"`
	HealthAddr           string `envconfig:"RELAY_HEALTH_ADDR" default:":8090"`
}

func LoadRelayConfig() (*RelayConfig, error) {
	_ = godotenv.Load()

	var cfg RelayConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}
