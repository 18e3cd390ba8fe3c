package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintastic/internal/amqp"
	"fintastic/internal/cache"
	"fintastic/internal/cli"
	"fintastic/internal/config"
	applog "fintastic/internal/log"
	"fintastic/internal/notify"
	"fintastic/internal/worker"
)

// statsInterval is how often the worker logs its delivery counters.
const statsInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, applog.ComponentWorker)
	logger.Info("Starting fintastic-worker", applog.FieldOperation, applog.OpStartup)
	cli.MustValidate(logger, cfg.ValidateWorker)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	alerts := worker.NewAlertWorker(notify.NewLogNotifier(logger), logger)

	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache))
	cacheManager.Register(alerts)
	cacheManager.StartCleanup(time.Hour)
	defer cacheManager.Stop()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- client.ConsumeNotifications(ctx, alerts.HandleMessage)
	}()

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-consumeErr
			logStats(logger, alerts.Stats())
			logger.Info("Worker stopped", applog.FieldOperation, applog.OpShutdown)
			return
		case err := <-consumeErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err)
				logStats(logger, alerts.Stats())
				os.Exit(1)
			}
			return
		case <-ticker.C:
			logStats(logger, alerts.Stats())
		}
	}
}

func logStats(logger *applog.Logger, s worker.Stats) {
	logger.Info("Notification delivery stats",
		"processed", s.Processed,
		"duplicates", s.Duplicates,
		"dropped", s.Dropped,
		"failed", s.Failed)
}
