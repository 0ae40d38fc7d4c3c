// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. Before parsing,
'joho/godotenv' loads `.env.<ENVIRONMENT>` and `.env` from the working directory
when they exist; values already present in the real environment always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Storage Drivers

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreDriver selects the persistence backend: postgres, mongo or memory.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE"   envDefault:"true"`

	// Document Database (MongoDB)
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"todoapi"`

	// Key-Value Cache (Redis). Optional: enables failed-login throttling.
	RedisURL string `env:"REDIS_URL"`

	// Session token signing
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"0s"`

	// Failed-login throttling
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT"      envDefault:"15m"`

	// Per-IP request limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load reads optional dotenv files, then parses environment variables into a [Config].
func Load() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// PORT is the conventional name on most PaaS runtimes.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SERVER_PORT") == "" {
		cfg.ServerPort = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotenv loads `.env.<ENVIRONMENT>` and `.env` when present.
//
// godotenv.Load never overrides variables that are already set, so the
// environment-specific file takes precedence over the generic one.
func loadDotenv() error {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	for _, path := range []string{".env." + environment, ".env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGODB_URI is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.TokenTTL < 0 {
		return errors.New("config: TOKEN_TTL must not be negative")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the trimmed, non-empty CORS origins.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
