// Package cli holds the start-up steps shared by cmd/melodi and
// cmd/melodictl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"melodi/internal/app"
	"melodi/internal/backend"
	"melodi/internal/config"
	"melodi/internal/log"
)

// SetupLogger builds the process logger from cfg and installs it as the
// slog default.
func SetupLogger(cfg *config.Config, w io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Writer:    w,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenApp builds the configured backend and opens the state container on
// it. The returned cleanup closes the backend.
func OpenApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app.App, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create backend: %w", err)
	}

	a, err := app.Open(ctx, app.Options{
		Store:     res.Store,
		Key:       cfg.StateKey,
		Publisher: res.Publisher,
		Logger:    logger,
	})
	if err != nil {
		res.Cleanup()
		return nil, nil, err
	}
	return a, res.Cleanup, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
