// Package services orchestrates the record store, the analytics functions,
// the response cache and the notifier for each user-facing operation.
package services

import (
	"context"
	"errors"
	"fmt"

	"fintastic/internal/core"
	applog "fintastic/internal/log"
)

// ErrDuplicateTransaction is returned when a record with the same label,
// amount and calendar day already exists for the owner.
var ErrDuplicateTransaction = errors.New("duplicate transaction")

// DuplicateTransactionError names the kind of the conflicting record.
type DuplicateTransactionError struct {
	Kind core.TransactionKind
}

func (e *DuplicateTransactionError) Error() string {
	label := "category"
	if e.Kind == core.KindIncome {
		label = "source"
	}
	return fmt.Sprintf("Duplicate entry detected. An %s with the same %s, amount, and date already exists.", e.Kind, label)
}

func (e *DuplicateTransactionError) Is(target error) bool { return target == ErrDuplicateTransaction }

// Invalidator drops every cached read of an owner. *cache.ResponseCache
// satisfies it.
type Invalidator interface {
	InvalidateOwner(owner string) int
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateOwner(string) int { return 0 }

func orNoop(inv Invalidator) Invalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// invalidate runs after a mutation committed, before the response is written.
func invalidate(ctx context.Context, inv Invalidator, owner, op string) {
	n := inv.InvalidateOwner(owner)
	applog.FromContext(ctx).DebugContext(ctx, "Invalidated cached reads",
		applog.FieldOwnerID, owner,
		applog.FieldOperation, op,
		"entries", n)
}
