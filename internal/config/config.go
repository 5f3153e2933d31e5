// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration.
type Config struct {
	Addr      string        `env:"MOVES_ADDR" envDefault:":8080"`
	DBPath    string        `env:"MOVES_DB_PATH" envDefault:"./data/moves.db"`
	JWTSecret string        `env:"MOVES_JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"MOVES_TOKEN_TTL" envDefault:"24h"`

	// SweepInterval is the period of the background sweeper. Zero disables it.
	SweepInterval    time.Duration `env:"MOVES_SWEEP_INTERVAL" envDefault:"1m"`
	SweepBatchLimit  int           `env:"MOVES_SWEEP_BATCH_LIMIT" envDefault:"100"`
	SweepConcurrency int           `env:"MOVES_SWEEP_CONCURRENCY" envDefault:"4"`
	SweepOnList      bool          `env:"MOVES_SWEEP_ON_LIST" envDefault:"true"`

	CORSOrigin string `env:"MOVES_CORS_ORIGIN" envDefault:"*"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates the server configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the struct tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("MOVES_TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("MOVES_SWEEP_INTERVAL must not be negative, got %s", c.SweepInterval))
	}
	if c.SweepBatchLimit < 1 {
		errs = append(errs, fmt.Errorf("MOVES_SWEEP_BATCH_LIMIT must be at least 1, got %d", c.SweepBatchLimit))
	}
	if c.SweepConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MOVES_SWEEP_CONCURRENCY must be at least 1, got %d", c.SweepConcurrency))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
