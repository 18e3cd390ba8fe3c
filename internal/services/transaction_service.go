package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintastic/internal/analytics"
	"fintastic/internal/core"
	applog "fintastic/internal/log"
	"fintastic/internal/notify"
	"fintastic/internal/store"
)

// TransactionInput carries the user-editable fields of an income or expense.
// Label is the income source or the expense category.
type TransactionInput struct {
	Label  string
	Amount core.Money
	Date   core.Date
	Icon   string
}

// TransactionService manages incomes and expenses. Expense mutations may
// trigger a budget alert through the notifier.
type TransactionService struct {
	store    store.RecordStore
	cache    Invalidator
	notifier notify.Notifier
	now      func() time.Time
}

func NewTransactionService(s store.RecordStore, inv Invalidator, n notify.Notifier) *TransactionService {
	return &TransactionService{
		store:    s,
		cache:    orNoop(inv),
		notifier: n,
		now:      time.Now,
	}
}

func (s *TransactionService) Create(ctx context.Context, owner string, kind core.TransactionKind, in TransactionInput) (core.Transaction, error) {
	t := s.build(owner, kind, in)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	existing, err := s.store.ListTransactions(ctx, kind, owner)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("check duplicate %s: %w", kind, err)
	}
	if isDuplicate(existing, t) {
		return core.Transaction{}, &DuplicateTransactionError{Kind: kind}
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", kind, err)
	}
	invalidate(ctx, s.cache, owner, applog.OpCreate)

	if kind == core.KindExpense {
		s.checkBudget(ctx, owner, created)
	}
	return created, nil
}

// List returns the owner's records of kind, newest date first.
func (s *TransactionService) List(ctx context.Context, owner string, kind core.TransactionKind) ([]core.Transaction, error) {
	records, err := s.store.ListTransactions(ctx, kind, owner)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return records, nil
}

// Update replaces label, amount and icon of a record. A zero Date keeps the
// stored one.
func (s *TransactionService) Update(ctx context.Context, owner string, kind core.TransactionKind, id string, in TransactionInput) (core.Transaction, error) {
	cur, err := s.store.GetTransaction(ctx, kind, owner, id)
	if err != nil {
		return core.Transaction{}, err
	}

	next := cur
	next.Label = strings.TrimSpace(in.Label)
	next.Amount = in.Amount
	next.Icon = in.Icon
	if !in.Date.IsZero() {
		next.Date = in.Date
	}
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, next)
	if err != nil {
		return core.Transaction{}, err
	}
	invalidate(ctx, s.cache, owner, applog.OpUpdate)

	if kind == core.KindExpense {
		s.checkBudget(ctx, owner, updated)
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, owner string, kind core.TransactionKind, id string) error {
	if err := s.store.DeleteTransaction(ctx, kind, owner, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, owner, applog.OpDelete)
	return nil
}

func (s *TransactionService) build(owner string, kind core.TransactionKind, in TransactionInput) core.Transaction {
	date := in.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}
	return core.Transaction{
		OwnerID: owner,
		Kind:    kind,
		Label:   strings.TrimSpace(in.Label),
		Amount:  in.Amount,
		Icon:    in.Icon,
		Date:    date,
	}
}

// isDuplicate reports whether records holds an entry with the same
// label, amount and calendar day as t.
func isDuplicate(records []core.Transaction, t core.Transaction) bool {
	for _, r := range records {
		if r.Label == t.Label && r.Amount == t.Amount && r.Date.SameDay(t.Date) {
			return true
		}
	}
	return false
}

// checkBudget sends a budget alert when the expense's category is at warning
// or over for the expense's month. Failures are logged only.
func (s *TransactionService) checkBudget(ctx context.Context, owner string, expense core.Transaction) {
	if s.notifier == nil {
		return
	}
	logger := applog.FromContext(ctx)
	p := analytics.MonthlyPeriod(expense.Date.Year(), expense.Date.Month())

	b, ok, err := s.store.FindActiveBudget(ctx, owner, expense.Category(), p.MonthString(), p.YearString())
	if err != nil {
		logger.WarnContext(ctx, "Budget alert check failed",
			applog.FieldOwnerID, owner,
			applog.FieldOperation, applog.OpNotify,
			applog.FieldError, err)
		return
	}
	if !ok {
		return
	}

	expenses, err := s.store.ListTransactions(ctx, core.KindExpense, owner)
	if err != nil {
		logger.WarnContext(ctx, "Budget alert check failed",
			applog.FieldOwnerID, owner,
			applog.FieldOperation, applog.OpNotify,
			applog.FieldError, err)
		return
	}

	analysis := analytics.ComputeBudgetAnalysis([]core.Budget{b}, expenses, p)
	if len(analysis.Budgets) == 0 {
		return
	}
	row := analysis.Budgets[0]
	if row.Status == core.StatusGood {
		return
	}

	if _, err := s.notifier.Send(ctx, owner, notify.TemplateBudgetAlert, notify.BudgetAlertParams(row)); err != nil {
		logger.WarnContext(ctx, "Budget alert not delivered",
			applog.FieldOwnerID, owner,
			applog.FieldCategory, row.Category,
			applog.FieldError, err)
		return
	}
	logger.InfoContext(ctx, "Budget alert sent",
		applog.FieldOwnerID, owner,
		applog.FieldCategory, row.Category,
		"status", row.Status)
}
