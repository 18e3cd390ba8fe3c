// Package cli holds the start-up steps shared by the fintastic binaries.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	applog "fintastic/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds a text logger at the named level, tags it with
// component and makes it the process default.
func SetupLogger(w io.Writer, level, component string) *applog.Logger {
	lvl := applog.ParseLevel(level)
	logger := applog.New(applog.Config{
		Level:     lvl,
		Component: component,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	})
	applog.SetDefault(logger)
	return logger
}

// MustValidate runs validate and exits the process when it fails.
func MustValidate(logger *applog.Logger, validate func() error) {
	if err := validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldErrorType, applog.ErrorTypeConfiguration,
			applog.FieldError, err)
		os.Exit(1)
	}
}

// SignalContext returns a context cancelled by SIGINT or SIGTERM. The
// received signal is logged once.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
