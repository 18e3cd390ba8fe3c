package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	ID          string
	Kind        string
	OwnerID     string
	Label       string
	Icon        string
	AmountCents int64
	Date        string
	CreatedAt   string
	UpdatedAt   string
}

type BudgetRow struct {
	ID          string
	OwnerID     string
	Category    string
	AmountCents int64
	Period      string
	Month       string
	Year        string
	Icon        string
	Color       string
	IsActive    bool
	CreatedAt   string
	UpdatedAt   string
}

const transactionColumns = `id, kind, owner_id, label, icon, amount_cents, date, created_at, updated_at`

const budgetColumns = `id, owner_id, category, amount_cents, period, month, year, icon, color, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (TransactionRow, error) {
	var r TransactionRow
	err := s.Scan(&r.ID, &r.Kind, &r.OwnerID, &r.Label, &r.Icon, &r.AmountCents, &r.Date, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanBudget(s rowScanner) (BudgetRow, error) {
	var r BudgetRow
	err := s.Scan(&r.ID, &r.OwnerID, &r.Category, &r.AmountCents, &r.Period, &r.Month, &r.Year, &r.Icon, &r.Color, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const createTransaction = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, r TransactionRow) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		r.ID, r.Kind, r.OwnerID, r.Label, r.Icon, r.AmountCents, r.Date, r.CreatedAt, r.UpdatedAt)
	return err
}

const getTransaction = `SELECT ` + transactionColumns + `
FROM transactions WHERE id = ? AND kind = ? AND owner_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id, kind, ownerID string) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, kind, ownerID))
}

const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions WHERE owner_id = ? AND kind = ?
ORDER BY date DESC, created_at DESC`

func (q *Queries) ListTransactions(ctx context.Context, ownerID, kind string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, ownerID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]TransactionRow, 0)
	for rows.Next() {
		r, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateTransaction = `UPDATE transactions
SET label = ?, icon = ?, amount_cents = ?, date = ?, updated_at = ?
WHERE id = ? AND kind = ? AND owner_id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, r TransactionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		r.Label, r.Icon, r.AmountCents, r.Date, r.UpdatedAt, r.ID, r.Kind, r.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND kind = ? AND owner_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id, kind, ownerID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, kind, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createBudget = `INSERT INTO budgets (` + budgetColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateBudget(ctx context.Context, r BudgetRow) error {
	_, err := q.db.ExecContext(ctx, createBudget,
		r.ID, r.OwnerID, r.Category, r.AmountCents, r.Period, r.Month, r.Year, r.Icon, r.Color, r.IsActive, r.CreatedAt, r.UpdatedAt)
	return err
}

const getBudget = `SELECT ` + budgetColumns + ` FROM budgets WHERE id = ? AND owner_id = ?`

func (q *Queries) GetBudget(ctx context.Context, id, ownerID string) (BudgetRow, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudget, id, ownerID))
}

const findActiveBudget = `SELECT ` + budgetColumns + `
FROM budgets
WHERE owner_id = ? AND category = ? AND month = ? AND year = ? AND is_active = 1`

func (q *Queries) FindActiveBudget(ctx context.Context, ownerID, category, month, year string) (BudgetRow, error) {
	return scanBudget(q.db.QueryRowContext(ctx, findActiveBudget, ownerID, category, month, year))
}

const listBudgets = `SELECT ` + budgetColumns + `
FROM budgets
WHERE owner_id = ?1
  AND (?2 = '' OR month = ?2)
  AND (?3 = '' OR year = ?3)
  AND (?4 = 0 OR is_active = 1)
ORDER BY created_at DESC, id`

func (q *Queries) ListBudgets(ctx context.Context, ownerID, month, year string, activeOnly bool) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, ownerID, month, year, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]BudgetRow, 0)
	for rows.Next() {
		r, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateBudget = `UPDATE budgets
SET category = ?, amount_cents = ?, period = ?, icon = ?, color = ?, is_active = ?, updated_at = ?
WHERE id = ? AND owner_id = ?`

func (q *Queries) UpdateBudget(ctx context.Context, r BudgetRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBudget,
		r.Category, r.AmountCents, r.Period, r.Icon, r.Color, r.IsActive, r.UpdatedAt, r.ID, r.OwnerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBudget = `DELETE FROM budgets WHERE id = ? AND owner_id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, id, ownerID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBudget, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
