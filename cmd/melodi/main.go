package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"melodi/internal/cli"
	apphttp "melodi/internal/http"
	"melodi/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, os.Stdout)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	a, cleanup, err := cli.OpenApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open state", log.FieldError, err, log.FieldOperation, log.OpStartup)
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, a, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting melodi server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", cfg.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
