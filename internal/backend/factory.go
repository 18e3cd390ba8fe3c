package backend

import (
	"context"
	"errors"
	"fmt"

	"fintastic/internal/amqp"
	applog "fintastic/internal/log"
	"fintastic/internal/notify"
	"fintastic/internal/storage"
	"fintastic/internal/store"
	"fintastic/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the record store and the notifier selected by config.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		st  store.RecordStore
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		st, err = f.createSQLiteStore(config)
	case MemoryBackend:
		st = f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{
		Store:  st,
		Checks: []HealthCheck{{Name: "store", Check: st.Ping}},
	}

	notifier, closeNotifier := f.createNotifier(ctx, config)
	result.Notifier = notifier
	if client, ok := notifier.(*amqp.Client); ok {
		result.Checks = append(result.Checks, HealthCheck{Name: "amqp", Check: client.Ping})
	}

	result.Cleanup = func() error {
		return errors.Join(closeNotifier(), st.Close())
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (store.RecordStore, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore() store.RecordStore {
	f.logger.Info("Initialized memory backend")
	return memory.New()
}

// createNotifier returns the AMQP publisher when configured and reachable,
// and the log notifier otherwise.
func (f *DefaultFactory) createNotifier(ctx context.Context, config Config) (notify.Notifier, func() error) {
	noop := func() error { return nil }
	fallback := notify.NewLogNotifier(f.logger)

	if config.AMQPURL == "" {
		f.logger.InfoContext(ctx, "AMQP not configured, budget alerts are logged only")
		return fallback, noop
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, budget alerts are logged only",
			applog.FieldError, err)
		return fallback, noop
	}

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client, client.Close
}
