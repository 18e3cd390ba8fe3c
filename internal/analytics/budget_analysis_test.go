package analytics

import (
	"fmt"
	"testing"

	"fintastic/internal/core"
)

func budget(id, category string, cents int64, month, year string) core.Budget {
	return core.Budget{
		ID:       id,
		OwnerID:  "u1",
		Category: category,
		Amount:   core.Cents(cents),
		Period:   core.PeriodMonthly,
		Month:    month,
		Year:     year,
		Color:    core.DefaultBudgetColor,
		IsActive: true,
	}
}

func TestComputeBudgetAnalysisEmpty(t *testing.T) {
	expenses := []core.Transaction{expense("Food", 5000, 2025, 3, 2)}
	for _, p := range []Period{MonthlyPeriod(2025, 3), AnnualPeriod(2025)} {
		got := ComputeBudgetAnalysis(nil, expenses, p)
		if len(got.Budgets) != 0 {
			t.Fatalf("%s: expected no rows, got %d", p.Mode, len(got.Budgets))
		}
		if !got.TotalBudget.IsZero() || !got.TotalSpent.IsZero() {
			t.Fatalf("%s: expected zero totals, got %v / %v", p.Mode, got.TotalBudget, got.TotalSpent)
		}
		if got.Budgets == nil {
			t.Fatalf("%s: rows should be an empty slice, not nil", p.Mode)
		}
	}
}

func TestPercentageAndStatusBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		amount     int64
		spent      int64
		percentage float64
		status     core.BudgetStatus
		over       bool
	}{
		{"eighty percent is warning", 10000, 8000, 80, core.StatusWarning, false},
		{"just below warning", 10000, 7999, 79.99, core.StatusGood, false},
		{"exactly at budget is over", 10000, 10000, 100, core.StatusOver, false},
		{"above budget", 10000, 12000, 120, core.StatusOver, true},
		{"zero amount never divides", 0, 5000, 0, core.StatusGood, true},
		{"nothing spent", 10000, 0, 0, core.StatusGood, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := budget("b1", "Food", tc.amount, "03", "2025")
			var expenses []core.Transaction
			if tc.spent > 0 {
				expenses = append(expenses, expense("Food", tc.spent, 2025, 3, 10))
			}
			got := ComputeBudgetAnalysis([]core.Budget{b}, expenses, MonthlyPeriod(2025, 3))
			if len(got.Budgets) != 1 {
				t.Fatalf("expected one row, got %d", len(got.Budgets))
			}
			row := got.Budgets[0]
			if fmt.Sprintf("%.2f", row.Percentage) != fmt.Sprintf("%.2f", tc.percentage) {
				t.Fatalf("expected percentage %.2f, got %.4f", tc.percentage, row.Percentage)
			}
			if row.Status != tc.status {
				t.Fatalf("expected status %s, got %s", tc.status, row.Status)
			}
			if row.IsOverBudget != tc.over {
				t.Fatalf("expected isOverBudget=%v", tc.over)
			}
			if row.Remaining.Cents != tc.amount-tc.spent {
				t.Fatalf("expected remaining %d, got %d", tc.amount-tc.spent, row.Remaining.Cents)
			}
		})
	}
}

func TestMonthlyAnalysisFiltersPeriodAndActive(t *testing.T) {
	inactive := budget("b4", "Fun", 10000, "03", "2025")
	inactive.IsActive = false
	budgets := []core.Budget{
		budget("b1", "Food", 50000, "03", "2025"),
		budget("b2", "Rent", 100000, "03", "2025"),
		budget("b3", "Food", 50000, "04", "2025"),
		inactive,
	}
	expenses := []core.Transaction{
		expense("Food", 12000, 2025, 3, 5),
		expense("Food", 3000, 2025, 3, 20),
		expense("Food", 9900, 2025, 4, 1),
		expense("Travel", 70000, 2025, 3, 8),
	}

	got := ComputeBudgetAnalysis(budgets, expenses, MonthlyPeriod(2025, 3))
	if got.ViewMode != "monthly" {
		t.Fatalf("expected monthly view, got %s", got.ViewMode)
	}
	if len(got.Budgets) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Budgets))
	}
	food := got.Budgets[0]
	if food.ID != "b1" || food.Spent.Cents != 15000 || food.Month != "03" {
		t.Fatalf("unexpected food row: %+v", food)
	}
	if food.MonthlyAmount != nil {
		t.Fatalf("monthly rows carry no monthlyAmount")
	}
	if got.TotalBudget.Cents != 150000 || got.TotalSpent.Cents != 15000 {
		t.Fatalf("unexpected totals: budget=%d spent=%d", got.TotalBudget.Cents, got.TotalSpent.Cents)
	}
}

func TestAnnualRollup(t *testing.T) {
	var budgets []core.Budget
	for m := 1; m <= 12; m++ {
		budgets = append(budgets, budget(fmt.Sprintf("f%d", m), "Food", 10000, core.FormatMonth(m), "2025"))
	}
	budgets = append(budgets, budget("r1", "Rent", 100000, "01", "2025"))
	budgets = append(budgets, budget("old", "Food", 10000, "01", "2024"))

	expenses := []core.Transaction{
		expense("Food", 30000, 2025, 1, 3),
		expense("Food", 70000, 2025, 11, 3),
		expense("Food", 99999, 2024, 6, 3),
	}

	got := ComputeBudgetAnalysis(budgets, expenses, AnnualPeriod(2025))
	if got.ViewMode != "annual" {
		t.Fatalf("expected annual view, got %s", got.ViewMode)
	}
	if len(got.Budgets) != 2 {
		t.Fatalf("expected 2 category rows, got %d", len(got.Budgets))
	}

	food := got.Budgets[0]
	if food.ID != "Food_annual" || food.Period != core.PeriodAnnual {
		t.Fatalf("unexpected food row identity: %+v", food)
	}
	if food.Amount.Cents != 120000 {
		t.Fatalf("expected annual budget 1200, got %v", food.Amount)
	}
	if food.MonthlyAmount == nil || food.MonthlyAmount.Cents != 10000 {
		t.Fatalf("expected monthlyAmount 100, got %v", food.MonthlyAmount)
	}
	if food.Spent.Cents != 100000 {
		t.Fatalf("expected spent 1000, got %v", food.Spent)
	}
	if food.Status != core.StatusWarning {
		t.Fatalf("expected warning at 83%%, got %s", food.Status)
	}

	rent := got.Budgets[1]
	if rent.MonthlyAmount.Cents != 8300 {
		t.Fatalf("expected rent monthlyAmount 83, got %v", rent.MonthlyAmount)
	}
	if got.TotalBudget.Cents != 220000 || got.TotalSpent.Cents != 100000 {
		t.Fatalf("unexpected totals: budget=%d spent=%d", got.TotalBudget.Cents, got.TotalSpent.Cents)
	}
}
