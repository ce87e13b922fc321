// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all server configuration
type Config struct {
	Port        string `envconfig:"PORT" default:"8787"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// DatabaseURL is a postgres DSN. When empty, the individual DB_* fields
	// are assembled into one.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"balentine"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:"server.log"`

	// Redis is optional; the auth rate limiter degrades to a no-op without it.
	RedisHost     string `envconfig:"REDIS_HOST"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; system environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
