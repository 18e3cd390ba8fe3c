// Package storetest holds the behaviour every store.RecordStore backend must
// share. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"fintastic/internal/core"
	"fintastic/internal/store"
)

// Run exercises s against the RecordStore contract. s must be empty.
func Run(t *testing.T, newStore func(t *testing.T) store.RecordStore) {
	t.Run("TransactionLifecycle", func(t *testing.T) { testTransactionLifecycle(t, newStore(t)) })
	t.Run("TransactionOwnership", func(t *testing.T) { testTransactionOwnership(t, newStore(t)) })
	t.Run("BudgetUniqueness", func(t *testing.T) { testBudgetUniqueness(t, newStore(t)) })
	t.Run("BudgetUpdate", func(t *testing.T) { testBudgetUpdate(t, newStore(t)) })
	t.Run("BudgetListAndDelete", func(t *testing.T) { testBudgetListAndDelete(t, newStore(t)) })
}

func tx(kind core.TransactionKind, owner, label string, cents int64, day int) core.Transaction {
	return core.Transaction{
		Kind:    kind,
		OwnerID: owner,
		Label:   label,
		Amount:  core.Cents(cents),
		Date:    core.NewDate(2025, 3, day),
	}
}

func budget(owner, category, month string) core.Budget {
	return core.Budget{
		OwnerID:  owner,
		Category: category,
		Amount:   core.Cents(50000),
		Period:   core.PeriodMonthly,
		Month:    month,
		Year:     "2025",
		Color:    core.DefaultBudgetColor,
		IsActive: true,
	}
}

func testTransactionLifecycle(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	created, err := s.CreateTransaction(ctx, tx(core.KindExpense, "u1", "Food", 1250, 3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and createdAt, got %+v", created)
	}
	if _, err := s.CreateTransaction(ctx, tx(core.KindExpense, "u1", "Rent", 90000, 10)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateTransaction(ctx, tx(core.KindIncome, "u1", "Salary", 250000, 1)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetTransaction(ctx, core.KindExpense, "u1", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Label != "Food" || got.Amount.Cents != 1250 || !got.Date.SameDay(core.NewDate(2025, 3, 3)) {
		t.Fatalf("unexpected record: %+v", got)
	}

	list, err := s.ListTransactions(ctx, core.KindExpense, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Label != "Rent" {
		t.Fatalf("expected 2 expenses newest date first, got %+v", list)
	}

	got.Amount = core.Cents(1500)
	got.Label = "Groceries"
	updated, err := s.UpdateTransaction(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents != 1500 || updated.Label != "Groceries" || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := s.DeleteTransaction(ctx, core.KindExpense, "u1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, core.KindExpense, "u1", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func testTransactionOwnership(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	created, err := s.CreateTransaction(ctx, tx(core.KindIncome, "u1", "Salary", 100000, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.GetTransaction(ctx, core.KindIncome, "u2", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("other owner must not read the record, got %v", err)
	}
	if _, err := s.GetTransaction(ctx, core.KindExpense, "u1", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("kind mismatch must not match, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, core.KindIncome, "u2", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("other owner must not delete the record, got %v", err)
	}
	foreign := created
	foreign.OwnerID = "u2"
	if _, err := s.UpdateTransaction(ctx, foreign); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("other owner must not update the record, got %v", err)
	}
	list, err := s.ListTransactions(ctx, core.KindIncome, "u2")
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list for u2, got %v (%v)", list, err)
	}
}

func testBudgetUniqueness(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	first, err := s.CreateBudget(ctx, budget("u1", "Food", "03"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = s.CreateBudget(ctx, budget("u1", "Food", "03"))
	if !errors.Is(err, store.ErrDuplicateBudget) {
		t.Fatalf("expected ErrDuplicateBudget, got %v", err)
	}
	var dup *store.DuplicateBudgetError
	if !errors.As(err, &dup) || dup.Category != "Food" || dup.Month != "03" || dup.Year != "2025" {
		t.Fatalf("expected duplicate details, got %v", err)
	}

	kept, err := s.GetBudget(ctx, "u1", first.ID)
	if err != nil || kept.Amount.Cents != 50000 {
		t.Fatalf("original budget must be untouched, got %+v (%v)", kept, err)
	}

	// same slot for another owner or month is fine
	if _, err := s.CreateBudget(ctx, budget("u2", "Food", "03")); err != nil {
		t.Fatalf("other owner: %v", err)
	}
	if _, err := s.CreateBudget(ctx, budget("u1", "Food", "04")); err != nil {
		t.Fatalf("other month: %v", err)
	}

	found, ok, err := s.FindActiveBudget(ctx, "u1", "Food", "03", "2025")
	if err != nil || !ok || found.ID != first.ID {
		t.Fatalf("expected to find %s, got %+v ok=%v err=%v", first.ID, found, ok, err)
	}
	if _, ok, _ := s.FindActiveBudget(ctx, "u1", "Food", "05", "2025"); ok {
		t.Fatal("no budget exists for May")
	}
}

func testBudgetUpdate(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	food, err := s.CreateBudget(ctx, budget("u1", "Food", "03"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateBudget(ctx, budget("u1", "Rent", "03")); err != nil {
		t.Fatalf("create: %v", err)
	}

	food.Amount = core.Cents(60000)
	food.Color = "#000000"
	food.Month = "09" // ignored
	updated, err := s.UpdateBudget(ctx, food)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents != 60000 || updated.Color != "#000000" || updated.Month != "03" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	updated.Category = "Rent"
	if _, err := s.UpdateBudget(ctx, updated); !errors.Is(err, store.ErrDuplicateBudget) {
		t.Fatalf("renaming into an occupied slot must fail, got %v", err)
	}

	updated.Category = "Groceries"
	if _, err := s.UpdateBudget(ctx, updated); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := s.CreateBudget(ctx, budget("u1", "Food", "03")); err != nil {
		t.Fatalf("old slot should be free after rename: %v", err)
	}

	foreign := updated
	foreign.OwnerID = "u2"
	if _, err := s.UpdateBudget(ctx, foreign); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func testBudgetListAndDelete(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	var ids []string
	for _, m := range []string{"01", "02", "03"} {
		b, err := s.CreateBudget(ctx, budget("u1", "Food", m))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, b.ID)
	}
	if _, err := s.CreateBudget(ctx, budget("u2", "Food", "01")); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := s.ListBudgets(ctx, "u1", store.BudgetFilter{ActiveOnly: true})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 budgets, got %d (%v)", len(all), err)
	}
	feb, err := s.ListBudgets(ctx, "u1", store.BudgetFilter{Month: "02", Year: "2025"})
	if err != nil || len(feb) != 1 || feb[0].ID != ids[1] {
		t.Fatalf("expected february budget, got %+v (%v)", feb, err)
	}

	if err := s.DeleteBudget(ctx, "u2", ids[0]); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign delete must fail, got %v", err)
	}
	if err := s.DeleteBudget(ctx, "u1", ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetBudget(ctx, "u1", ids[0]); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.CreateBudget(ctx, budget("u1", "Food", "01")); err != nil {
		t.Fatalf("slot should be free after hard delete: %v", err)
	}
}
