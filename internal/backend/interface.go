package backend

import (
	"context"

	"fintastic/internal/notify"
	"fintastic/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// HealthCheck is a named readiness check of a backend resource.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

// BackendResult contains the record store, the notifier and the cleanup
// function that releases both.
type BackendResult struct {
	Store    store.RecordStore
	Notifier notify.Notifier
	Checks   []HealthCheck
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Notifications; an empty URL selects the log notifier
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
