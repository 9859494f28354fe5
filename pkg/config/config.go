// Package config loads environment-driven configuration for the CLI.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds CLI configuration. Verification itself takes explicit
// inputs (pack + key registry) per call and reads nothing ambient.
type Config struct {
	KernelURL   string        `env:"EVIDENT_KERNEL_URL" envDefault:"http://localhost:8080"`
	APIKey      string        `env:"EVIDENT_API_KEY"`
	Timeout     time.Duration `env:"EVIDENT_TIMEOUT" envDefault:"30s"`
	DatabaseURL string        `env:"EVIDENT_DATABASE_URL" envDefault:"evident.db"`
	TrustKeys   string        `env:"EVIDENT_TRUST_KEYS" envDefault:"trust_keys.yaml"`
	LogLevel    string        `env:"EVIDENT_LOG_LEVEL" envDefault:"INFO"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
