package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintastic/internal/auth"
	"fintastic/internal/backend"
	"fintastic/internal/cache"
	"fintastic/internal/cli"
	"fintastic/internal/config"
	apphttp "fintastic/internal/http"
	applog "fintastic/internal/log"
	"fintastic/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, applog.ComponentApp)
	cli.MustValidate(logger, cfg.Validate)

	logger.Info("Starting fintastic",
		applog.FieldOperation, applog.OpStartup,
		"env", cfg.AppEnv,
		"backend", cfg.DataBackend,
		"cache_enabled", cfg.CacheActive())

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	cacheStore := cache.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheTTL)
	responses := cache.NewResponseCache(cacheStore, cache.Options{
		TTL:      cfg.CacheTTL,
		Disabled: !cfg.CacheActive(),
		Logger:   logger.WithComponent(applog.ComponentCache),
	})

	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache))
	cacheManager.Register(cacheStore)
	cacheManager.StartCleanup(cfg.CacheCleanupInterval)
	defer cacheManager.Stop()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		logger.Error("Failed to create token service", applog.FieldError, err)
		os.Exit(1)
	}

	checks := make([]apphttp.ReadinessCheck, 0, len(res.Checks))
	for _, c := range res.Checks {
		checks = append(checks, apphttp.ReadinessCheck{Name: c.Name, Check: c.Check})
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               cfg.Addr(),
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
	}, apphttp.Deps{
		Budgets:      services.NewBudgetService(res.Store, responses),
		Transactions: services.NewTransactionService(res.Store, responses, res.Notifier),
		Dashboard:    services.NewDashboardService(res.Store),
		Cache:        responses,
		Tokens:       tokens,
		Logger:       logger,
		Checks:       checks,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", applog.FieldError, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", applog.FieldError, err)
	}
	logger.Info("Server stopped", applog.FieldOperation, applog.OpShutdown)
}
