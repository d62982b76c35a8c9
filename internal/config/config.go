package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress    string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
	StoreDriver      string `env:"STORE_DRIVER" envDefault:"postgres"`
	DeliveryLeadDays int    `env:"DELIVERY_LEAD_DAYS" envDefault:"7"`
	PostgresConfig
}

// NewConfig reads an optional .env file and then the process environment.
func NewConfig() (*Config, error) {
	loadDotEnv()

	config := &Config{}

	err := env.Parse(config)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}
	if config.DeliveryLeadDays < 0 {
		return nil, fmt.Errorf("config.NewConfig: DELIVERY_LEAD_DAYS must not be negative, got %d", config.DeliveryLeadDays)
	}
	switch config.StoreDriver {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("config.NewConfig: unknown STORE_DRIVER %q", config.StoreDriver)
	}
	return config, nil
}

type PostgresConfig struct {
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://procurement:procurement@db:5432/procurement?sslmode=disable"`
	AutoMigrateUp   bool   `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown bool   `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	MigrationsURL   string `env:"MIGRATIONS_URL" envDefault:"file://internal/repository/db/migrations"`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	loadDotEnv()

	config := &PostgresConfig{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, err
}

// a missing .env is fine, the environment alone is enough
func loadDotEnv() {
	_ = godotenv.Load()
}
