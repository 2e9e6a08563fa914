// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Drivers the todo store can run on.
const (
	DriverPostgrest = "postgrest"
	DriverSQLite    = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgrest"`

	// Hosted store (postgrest driver).
	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`

	// Local store (sqlite driver).
	SQLitePath string `env:"SQLITE_PATH" envDefault:"todos.db"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the fail-fast startup contract: the hosted driver
// refuses to start without its endpoint URL and access key.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgrest:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL environment variable is required")
		}
		if c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY environment variable is required")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH environment variable is required")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}
