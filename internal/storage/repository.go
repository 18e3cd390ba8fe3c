// Package storage is the SQLite record store. The schema lives in
// migrations/ and is applied on open.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintastic/internal/core"
	"fintastic/internal/store"
)

// timeLayout is fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ store.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer keeps the unique-slot check free of SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

// SetClock replaces the timestamp source. Tests use it for stable ordering.
func (r *SQLiteRepository) SetClock(now func() time.Time) { r.now = now }

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) stamp() string {
	return r.now().UTC().Format(timeLayout)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func duplicateOf(b core.Budget) error {
	return &store.DuplicateBudgetError{Category: b.Category, Month: b.Month, Year: b.Year}
}

func transactionFromRow(row TransactionRow) (core.Transaction, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode date of %s: %w", row.ID, err)
	}
	return core.Transaction{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Kind:      core.TransactionKind(row.Kind),
		Amount:    core.Cents(row.AmountCents),
		Label:     row.Label,
		Icon:      row.Icon,
		Date:      d,
		CreatedAt: parseStamp(row.CreatedAt),
		UpdatedAt: parseStamp(row.UpdatedAt),
	}, nil
}

func budgetFromRow(row BudgetRow) core.Budget {
	return core.Budget{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Category:  row.Category,
		Amount:    core.Cents(row.AmountCents),
		Period:    core.BudgetPeriod(row.Period),
		Month:     row.Month,
		Year:      row.Year,
		Icon:      row.Icon,
		Color:     row.Color,
		IsActive:  row.IsActive,
		CreatedAt: parseStamp(row.CreatedAt),
		UpdatedAt: parseStamp(row.UpdatedAt),
	}
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := r.stamp()
	row := TransactionRow{
		ID:          uuid.NewString(),
		Kind:        string(t.Kind),
		OwnerID:     t.OwnerID,
		Label:       t.Label,
		Icon:        t.Icon,
		AmountCents: t.Amount.Cents,
		Date:        t.Date.Format(time.DateOnly),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.queries.CreateTransaction(ctx, row); err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", t.Kind, err)
	}
	return transactionFromRow(row)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.TransactionKind, ownerID, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, string(kind), ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return transactionFromRow(row)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, kind core.TransactionKind, ownerID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, ownerID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := transactionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	n, err := r.queries.UpdateTransaction(ctx, TransactionRow{
		ID:          t.ID,
		Kind:        string(t.Kind),
		OwnerID:     t.OwnerID,
		Label:       t.Label,
		Icon:        t.Icon,
		AmountCents: t.Amount.Cents,
		Date:        t.Date.Format(time.DateOnly),
		UpdatedAt:   r.stamp(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %s: %w", t.Kind, t.ID, err)
	}
	if n == 0 {
		return core.Transaction{}, store.ErrNotFound
	}
	return r.GetTransaction(ctx, t.Kind, t.OwnerID, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.TransactionKind, ownerID, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id, string(kind), ownerID)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	now := r.stamp()
	row := BudgetRow{
		ID:          uuid.NewString(),
		OwnerID:     b.OwnerID,
		Category:    b.Category,
		AmountCents: b.Amount.Cents,
		Period:      string(b.Period),
		Month:       b.Month,
		Year:        b.Year,
		Icon:        b.Icon,
		Color:       b.Color,
		IsActive:    b.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.queries.CreateBudget(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, duplicateOf(b)
		}
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return budgetFromRow(row), nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, ownerID, id string) (core.Budget, error) {
	row, err := r.queries.GetBudget(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", id, err)
	}
	return budgetFromRow(row), nil
}

func (r *SQLiteRepository) FindActiveBudget(ctx context.Context, ownerID, category, month, year string) (core.Budget, bool, error) {
	row, err := r.queries.FindActiveBudget(ctx, ownerID, category, month, year)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("find budget: %w", err)
	}
	return budgetFromRow(row), true, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, ownerID string, f store.BudgetFilter) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, ownerID, f.Month, f.Year, f.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, budgetFromRow(row))
	}
	return out, nil
}

// UpdateBudget leaves month, year and created_at untouched.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	cur, err := r.GetBudget(ctx, b.OwnerID, b.ID)
	if err != nil {
		return core.Budget{}, err
	}
	n, err := r.queries.UpdateBudget(ctx, BudgetRow{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Category:    b.Category,
		AmountCents: b.Amount.Cents,
		Period:      string(b.Period),
		Icon:        b.Icon,
		Color:       b.Color,
		IsActive:    b.IsActive,
		UpdatedAt:   r.stamp(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			b.Month, b.Year = cur.Month, cur.Year
			return core.Budget{}, duplicateOf(b)
		}
		return core.Budget{}, fmt.Errorf("update budget %s: %w", b.ID, err)
	}
	if n == 0 {
		return core.Budget{}, store.ErrNotFound
	}
	return r.GetBudget(ctx, b.OwnerID, b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, id string) error {
	n, err := r.queries.DeleteBudget(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
