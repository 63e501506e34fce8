// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"estoque/internal/database"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Env        string
	Port       string
	LogLevel   string
	Database   database.Config
	JWTSecret  string
	BcryptCost int
	RabbitMQ   RabbitMQConfig
}

// RabbitMQConfig configures domain event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// Enabled reports whether events should be published.
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads .env files (if any) and the environment.
func Load(envFiles ...string) (*Config, error) {
	// Missing .env files are fine: the environment alone is a valid source.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", database.DriverSQLite)
	v.SetDefault("DATABASE_URL", "file:estoque.db?cache=shared")
	v.SetDefault("DATABASE_DEBUG", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "estoque.events")
	v.SetDefault("RABBITMQ_QUEUE", "estoque.events.log")
	v.AutomaticEnv()

	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		Port:     v.GetString("APP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: database.Config{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			URL:    v.GetString("DATABASE_URL"),
			Debug:  v.GetBool("DATABASE_DEBUG"),
		},
		JWTSecret:  v.GetString("JWT_SECRET"),
		BcryptCost: v.GetInt("BCRYPT_COST"),
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.Database.Driver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	return nil
}
