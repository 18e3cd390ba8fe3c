package services

import (
	"context"
	"errors"
	"testing"

	"fintastic/internal/analytics"
	"fintastic/internal/core"
	"fintastic/internal/store"
	"fintastic/internal/store/memory"
)

func foodBudget(month string, propagate bool) NewBudget {
	return NewBudget{
		Category:           " Food ",
		Amount:             core.Cents(50000),
		Period:             core.PeriodMonthly,
		Month:              month,
		Year:               "2025",
		CopyToFutureMonths: propagate,
	}
}

func TestBudgetService_Create(t *testing.T) {
	tests := []struct {
		name        string
		in          NewBudget
		wantCopied  int
		wantMessage string
	}{
		{
			name:        "single month",
			in:          foodBudget("03", false),
			wantMessage: "Budget created successfully",
		},
		{
			name:        "copied to future months",
			in:          foodBudget("03", true),
			wantCopied:  9,
			wantMessage: "Budget created successfully and copied to 9 future months",
		},
		{
			name: "annual budgets are never copied",
			in: func() NewBudget {
				b := foodBudget("03", true)
				b.Period = core.PeriodAnnual
				return b
			}(),
			wantMessage: "Budget created successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &recordingInvalidator{}
			svc := NewBudgetService(memory.New(), inv)

			got, err := svc.Create(context.Background(), "u1", tt.in)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if got.CopiedCount != tt.wantCopied || got.Message != tt.wantMessage {
				t.Errorf("Create() = %d %q, want %d %q", got.CopiedCount, got.Message, tt.wantCopied, tt.wantMessage)
			}
			if got.Budget.Category != "Food" || got.Budget.Color != core.DefaultBudgetColor || !got.Budget.IsActive {
				t.Errorf("defaults not applied: %+v", got.Budget)
			}
			if inv.count() != 1 {
				t.Errorf("expected one invalidation, got %d", inv.count())
			}
		})
	}
}

func TestBudgetService_CreateDuplicate(t *testing.T) {
	inv := &recordingInvalidator{}
	svc := NewBudgetService(memory.New(), inv)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", foodBudget("03", false)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, "u1", foodBudget("03", false))

	var dup *store.DuplicateBudgetError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateBudgetError, got %v", err)
	}
	if dup.Category != "Food" || dup.Month != "03" || dup.Year != "2025" {
		t.Errorf("unexpected duplicate details %+v", dup)
	}
	if inv.count() != 1 {
		t.Errorf("a rejected create must not invalidate, got %d invalidations", inv.count())
	}
}

func TestBudgetService_CreateValidates(t *testing.T) {
	svc := NewBudgetService(memory.New(), nil)

	tests := []struct {
		name string
		in   NewBudget
		want error
	}{
		{"missing category", NewBudget{Amount: core.Cents(1), Month: "01", Year: "2025"}, core.ErrEmptyCategory},
		{"zero amount", NewBudget{Category: "Food", Month: "01", Year: "2025"}, core.ErrInvalidAmount},
		{"bad month", NewBudget{Category: "Food", Amount: core.Cents(1), Month: "1", Year: "2025"}, core.ErrInvalidMonth},
		{"bad year", NewBudget{Category: "Food", Amount: core.Cents(1), Month: "01", Year: "25"}, core.ErrInvalidYear},
		{"bad period", NewBudget{Category: "Food", Amount: core.Cents(1), Period: "weekly", Month: "01", Year: "2025"}, core.ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "u1", tt.in); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBudgetService_Update(t *testing.T) {
	ctx := context.Background()
	inv := &recordingInvalidator{}
	svc := NewBudgetService(memory.New(), inv)

	created, err := svc.Create(ctx, "u1", foodBudget("03", false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	amount := core.Cents(70000)
	icon := ""
	blank := "  "
	updated, err := svc.Update(ctx, "u1", created.Budget.ID, BudgetPatch{Amount: &amount, Icon: &icon, Category: &blank})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Amount.Cents != 70000 || updated.Category != "Food" || updated.Month != "03" {
		t.Errorf("unexpected update %+v", updated)
	}
	if inv.count() != 2 {
		t.Errorf("expected invalidation on update, got %d", inv.count())
	}

	if _, err := svc.Update(ctx, "u2", created.Budget.ID, BudgetPatch{Amount: &amount}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign update: expected ErrNotFound, got %v", err)
	}
	zero := core.Money{}
	if _, err := svc.Update(ctx, "u1", created.Budget.ID, BudgetPatch{Amount: &zero}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
}

func TestBudgetService_Delete(t *testing.T) {
	ctx := context.Background()
	inv := &recordingInvalidator{}
	svc := NewBudgetService(memory.New(), inv)

	created, _ := svc.Create(ctx, "u1", foodBudget("03", false))
	if err := svc.Delete(ctx, "u1", created.Budget.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, "u1", created.Budget.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	list, _ := svc.List(ctx, "u1")
	if len(list) != 0 {
		t.Errorf("expected no budgets, got %d", len(list))
	}
}

func TestBudgetService_Analysis(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	svc := NewBudgetService(s, nil)

	t.Run("no budgets", func(t *testing.T) {
		got, err := svc.Analysis(ctx, "u1", analytics.MonthlyPeriod(2025, 3))
		if err != nil {
			t.Fatalf("Analysis() error = %v", err)
		}
		if got.Budgets == nil || len(got.Budgets) != 0 || !got.TotalBudget.IsZero() || !got.TotalSpent.IsZero() {
			t.Errorf("expected empty analysis, got %+v", got)
		}
	})

	if _, err := svc.Create(ctx, "u1", foodBudget("01", true)); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, d := range []int{3, 20} {
		if _, err := s.CreateTransaction(ctx, core.Transaction{
			OwnerID: "u1", Kind: core.KindExpense, Label: "Food", Amount: core.Cents(20000), Date: core.NewDate(2025, 3, d),
		}); err != nil {
			t.Fatalf("seed expense: %v", err)
		}
	}

	t.Run("monthly", func(t *testing.T) {
		got, err := svc.Analysis(ctx, "u1", analytics.MonthlyPeriod(2025, 3))
		if err != nil {
			t.Fatalf("Analysis() error = %v", err)
		}
		if len(got.Budgets) != 1 {
			t.Fatalf("expected 1 row, got %d", len(got.Budgets))
		}
		row := got.Budgets[0]
		if row.Spent.Cents != 40000 || row.Percentage != 80 || row.Status != core.StatusWarning {
			t.Errorf("unexpected row %+v", row)
		}
	})

	t.Run("annual", func(t *testing.T) {
		got, err := svc.Analysis(ctx, "u1", analytics.AnnualPeriod(2025))
		if err != nil {
			t.Fatalf("Analysis() error = %v", err)
		}
		if len(got.Budgets) != 1 || got.TotalBudget.Cents != 600000 || got.Budgets[0].MonthlyAmount.Cents != 50000 {
			t.Errorf("unexpected annual analysis %+v", got)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		fs := newFailingStore()
		fs.failList = true
		failing := NewBudgetService(fs, nil)
		if _, err := failing.Create(ctx, "u1", foodBudget("03", false)); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := failing.Analysis(ctx, "u1", analytics.MonthlyPeriod(2025, 3)); !errors.Is(err, errStoreDown) {
			t.Errorf("expected wrapped store error, got %v", err)
		}
	})
}
