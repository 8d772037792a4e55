package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.TokenTTL)
	}
	if cfg.CommentDeleteByBoardCreator {
		t.Fatal("expected author-only comment deletion by default")
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("unexpected level %v", cfg.SlogLevel())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", testSecret)
	t.Setenv("TASKBOARD_ADDR", ":9999")
	t.Setenv("TASKBOARD_TOKEN_TTL", "90m")
	t.Setenv("TASKBOARD_LOG_LEVEL", "debug")
	t.Setenv("TASKBOARD_COMMENT_DELETE_BY_BOARD_CREATOR", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.TokenTTL != 90*time.Minute || !cfg.CommentDeleteByBoardCreator {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected level %v", cfg.SlogLevel())
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET is required") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatal("expected short secret error")
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", testSecret)
	t.Setenv("TASKBOARD_TOKEN_TTL", "not-a-duration")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestValidateRejectsUnknownLevel(t *testing.T) {
	cfg := Config{JWTSecret: testSecret, TokenTTL: time.Hour, ShutdownTimeout: time.Second, LogLevel: "loud"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown level error")
	}
}
