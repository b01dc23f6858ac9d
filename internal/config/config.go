package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" env-default:":3001"`
	DBConnString       string        `env:"DB_DSN" env-required:"true"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	CSRFTokenTTL       time.Duration `env:"CSRF_TOKEN_TTL" env-default:"5m"`
	CSRFSweepInterval  time.Duration `env:"CSRF_SWEEP_INTERVAL" env-default:"0s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.DBConnString == "" {
		return Config{}, fmt.Errorf("DB_DSN is required")
	}
	if cfg.CSRFTokenTTL <= 0 {
		return Config{}, fmt.Errorf("CSRF_TOKEN_TTL must be positive, got %s", cfg.CSRFTokenTTL)
	}
	return cfg, nil
}
