// Package config provides configuration loading for the value distribution calculator.
package config

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	Port     string `env:"APP_PORT" envDefault:"3000"`
	BasePath string `env:"APP_BASE_PATH"`

	// Locale used to format amounts (BCP 47).
	Locale string `env:"APP_LOCALE" envDefault:"id"`

	// Admin configuration
	AdminToken string `env:"APP_ADMIN_TOKEN"`

	// Debug settings
	DebugEnabled bool `env:"APP_DEBUG_ENABLED" envDefault:"false"`

	// TLS configuration for server
	TLSEnabled  bool   `env:"APP_TLS_ENABLED" envDefault:"false"`
	TLSCertPath string `env:"APP_TLS_CERT_PATH"`
	TLSKeyPath  string `env:"APP_TLS_KEY_PATH"`

	// Activity log settings
	MaxEvents int `env:"APP_MAX_EVENTS" envDefault:"100"`
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are given. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}
	return nil
}

// NewConfig creates a new Config from environment variables.
func NewConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	return &cfg, nil
}

// Redacted returns a copy of the config with sensitive values redacted.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"port":          c.Port,
		"base_path":     c.BasePath,
		"locale":        c.Locale,
		"admin_token":   redact(c.AdminToken),
		"debug_enabled": c.DebugEnabled,
		"tls_enabled":   c.TLSEnabled,
		"max_events":    c.MaxEvents,
	}
}

type loggerConfig struct {
	DebugEnabled bool `env:"APP_DEBUG_ENABLED" envDefault:"false"`
}

// NewLogger creates a new structured logger.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	if lc, err := env.ParseAs[loggerConfig](); err == nil && lc.DebugEnabled {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
