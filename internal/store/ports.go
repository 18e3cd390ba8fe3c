// Package store defines the record store the services depend on. Backends
// live in store/memory (in-process) and storage (SQLite).
package store

import (
	"context"
	"errors"
	"fmt"

	"fintastic/internal/core"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another owner.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateBudget is returned when an insert or update would create a
	// second active budget for the same owner, category, month and year.
	ErrDuplicateBudget = errors.New("duplicate budget")
)

// DuplicateBudgetError names the conflicting budget slot.
type DuplicateBudgetError struct {
	Category string
	Month    string
	Year     string
}

func (e *DuplicateBudgetError) Error() string {
	return fmt.Sprintf("budget for %s in %s %s already exists", e.Category, core.MonthAbbrev(e.Month), e.Year)
}

func (e *DuplicateBudgetError) Is(target error) bool { return target == ErrDuplicateBudget }

// BudgetFilter narrows ListBudgets. Empty fields match everything.
type BudgetFilter struct {
	Month      string
	Year       string
	ActiveOnly bool
}

// Ports for outbound adapters.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, kind core.TransactionKind, ownerID, id string) (core.Transaction, error)
		// ListTransactions returns the owner's records of kind, newest date first.
		ListTransactions(ctx context.Context, kind core.TransactionKind, ownerID string) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, kind core.TransactionKind, ownerID, id string) error
	}

	BudgetStore interface {
		// CreateBudget rejects a duplicate active budget with a
		// *DuplicateBudgetError instead of overwriting it.
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		GetBudget(ctx context.Context, ownerID, id string) (core.Budget, error)
		FindActiveBudget(ctx context.Context, ownerID, category, month, year string) (core.Budget, bool, error)
		// ListBudgets returns the owner's budgets, newest created first.
		ListBudgets(ctx context.Context, ownerID string, f BudgetFilter) ([]core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, ownerID, id string) error
	}

	// RecordStore is everything the services need from persistence.
	RecordStore interface {
		TransactionStore
		BudgetStore
		Ping(ctx context.Context) error
		Close() error
	}
)
