package services

import (
	"context"
	"errors"
	"sync"

	"fintastic/internal/core"
	"fintastic/internal/notify"
	"fintastic/internal/store"
	"fintastic/internal/store/memory"
)

type recordingInvalidator struct {
	mu     sync.Mutex
	owners []string
}

func (r *recordingInvalidator) InvalidateOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = append(r.owners, owner)
	return 1
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

type sentNotification struct {
	recipient, template string
	params              map[string]any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, recipient, templateID string, params map[string]any) (notify.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return notify.Result{}, f.err
	}
	f.sent = append(f.sent, sentNotification{recipient: recipient, template: templateID, params: params})
	return notify.Result{MessageID: "m", Channel: "fake"}, nil
}

var errStoreDown = errors.New("store down")

// failingStore wraps a memory store and fails selected calls.
type failingStore struct {
	*memory.Store
	failList bool
	// racyFind hides existing budgets from FindActiveBudget so inserts hit
	// the uniqueness constraint
	racyFind bool
}

func newFailingStore() *failingStore {
	return &failingStore{Store: memory.New()}
}

func (f *failingStore) ListTransactions(ctx context.Context, kind core.TransactionKind, owner string) ([]core.Transaction, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.Store.ListTransactions(ctx, kind, owner)
}

func (f *failingStore) FindActiveBudget(ctx context.Context, owner, category, month, year string) (core.Budget, bool, error) {
	if f.racyFind {
		return core.Budget{}, false, nil
	}
	return f.Store.FindActiveBudget(ctx, owner, category, month, year)
}

var _ store.RecordStore = (*failingStore)(nil)
