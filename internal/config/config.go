// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	Addr      string `env:"ADDR" envDefault:":8080"`
	DBPath    string `env:"DB_PATH" envDefault:"data/taskboard.db"`
	StaticDir string `env:"STATIC_DIR" envDefault:"web/dist"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"taskboard"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	RedisURL     string `env:"REDIS_URL"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	// CommentDeleteByBoardCreator lets board creators delete any comment on
	// their board in addition to the comment author.
	CommentDeleteByBoardCreator bool `env:"COMMENT_DELETE_BY_BOARD_CREATOR" envDefault:"false"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

const envPrefix = "TASKBOARD_"

const minSecretLen = 16

// Load reads an optional .env file and parses TASKBOARD_* variables.
func Load() (Config, error) {
	// A missing .env file is expected outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New(envPrefix+"JWT_SECRET is required"))
	} else if len(c.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("%sJWT_SECRET must be at least %d bytes", envPrefix, minSecretLen))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New(envPrefix+"TOKEN_TTL must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New(envPrefix+"SHUTDOWN_TIMEOUT must be positive"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel converts a level name into a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
