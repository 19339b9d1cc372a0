// Package cli provides process bootstrap shared by the debttrack binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"debttrack/internal/config"
	"debttrack/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at level and installs it as the
// slog default.
func SetupLogger(level, component string) *log.Logger {
	logger := log.New(log.Config{Level: log.ParseLevel(level), Component: component})
	log.SetDefault(logger)
	return logger
}

// Bootstrap loads .env and the configuration, sets up logging, and
// validates. server selects the stricter API server validation. It exits
// the process on an invalid configuration.
func Bootstrap(component string, server bool) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, component)

	validate := cfg.Validate
	if server {
		validate = cfg.ValidateServer
	}
	if err := validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
