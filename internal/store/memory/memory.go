package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintastic/internal/core"
	"fintastic/internal/store"
)

// Store keeps records in process memory. It enforces the same active-budget
// uniqueness rule as the SQLite schema.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	transactions map[string]core.Transaction
	budgets      map[string]core.Budget
	activeSlots  map[slot]string // active budget slot -> budget id
}

type slot struct {
	owner, category, month, year string
}

func slotOf(b core.Budget) slot {
	return slot{owner: b.OwnerID, category: b.Category, month: b.Month, year: b.Year}
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock uses now for createdAt/updatedAt stamps.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:          now,
		transactions: make(map[string]core.Transaction),
		budgets:      make(map[string]core.Budget),
		activeSlots:  make(map[slot]string),
	}
}

func (s *Store) stamp() time.Time { return s.now().UTC() }

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.NewString()
	t.CreatedAt = s.stamp()
	t.UpdatedAt = t.CreatedAt
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, kind core.TransactionKind, ownerID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.Kind != kind || t.OwnerID != ownerID {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, kind core.TransactionKind, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0)
	for _, t := range s.transactions {
		if t.Kind == kind && t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.transactions[t.ID]
	if !ok || cur.Kind != t.Kind || cur.OwnerID != t.OwnerID {
		return core.Transaction{}, store.ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = s.stamp()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.TransactionKind, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.Kind != kind || t.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.IsActive {
		if _, taken := s.activeSlots[slotOf(b)]; taken {
			return core.Budget{}, &store.DuplicateBudgetError{Category: b.Category, Month: b.Month, Year: b.Year}
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = s.stamp()
	b.UpdatedAt = b.CreatedAt
	s.budgets[b.ID] = b
	if b.IsActive {
		s.activeSlots[slotOf(b)] = b.ID
	}
	return b, nil
}

func (s *Store) GetBudget(_ context.Context, ownerID, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return core.Budget{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) FindActiveBudget(_ context.Context, ownerID, category, month, year string) (core.Budget, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.activeSlots[slot{owner: ownerID, category: category, month: month, year: year}]
	if !ok {
		return core.Budget{}, false, nil
	}
	return s.budgets[id], true, nil
}

func (s *Store) ListBudgets(_ context.Context, ownerID string, f store.BudgetFilter) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if b.OwnerID != ownerID {
			continue
		}
		if f.ActiveOnly && !b.IsActive {
			continue
		}
		if f.Year != "" && b.Year != f.Year {
			continue
		}
		if f.Month != "" && b.Month != f.Month {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.budgets[b.ID]
	if !ok || cur.OwnerID != b.OwnerID {
		return core.Budget{}, store.ErrNotFound
	}
	// month and year are fixed at creation
	b.Month, b.Year = cur.Month, cur.Year
	b.CreatedAt = cur.CreatedAt

	if b.IsActive {
		if id, taken := s.activeSlots[slotOf(b)]; taken && id != b.ID {
			return core.Budget{}, &store.DuplicateBudgetError{Category: b.Category, Month: b.Month, Year: b.Year}
		}
	}
	if cur.IsActive {
		delete(s.activeSlots, slotOf(cur))
	}
	if b.IsActive {
		s.activeSlots[slotOf(b)] = b.ID
	}
	b.UpdatedAt = s.stamp()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return store.ErrNotFound
	}
	if b.IsActive {
		delete(s.activeSlots, slotOf(b))
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
