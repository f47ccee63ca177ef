package cli

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"kitty/internal/config"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, "cli")
	if logger.Component() != "cli" {
		t.Errorf("Component() = %q, want cli", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}

	logger = SetupLogger(&config.Config{LogLevel: "loud"}, "cli")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("unknown level should fall back to info")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q, want memory", cfg.DataBackend)
	}

	t.Setenv("DATA_BACKEND", "postgres")
	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() should reject an unknown backend")
	}
}

func TestGracefulShutdownOnParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	logger := SetupLogger(&config.Config{LogLevel: "error"}, "cli")

	cleaned := false
	ctx, done := GracefulShutdown(parent, logger, time.Second, func(context.Context) { cleaned = true })
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	WaitForShutdown(ctx, done)
	if !cleaned {
		t.Error("cleanup should run on shutdown")
	}
}
