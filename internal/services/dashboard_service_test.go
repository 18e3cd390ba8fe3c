package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"fintastic/internal/analytics"
	"fintastic/internal/core"
	"fintastic/internal/store/memory"
)

func seedLedger(t *testing.T, s *memory.Store) {
	t.Helper()
	ctx := context.Background()
	records := []core.Transaction{
		{OwnerID: "u1", Kind: core.KindIncome, Label: "Salary", Amount: core.Cents(300000), Date: core.NewDate(2025, 3, 1)},
		{OwnerID: "u1", Kind: core.KindIncome, Label: "Salary", Amount: core.Cents(300000), Date: core.NewDate(2025, 4, 1)},
		{OwnerID: "u1", Kind: core.KindExpense, Label: "Rent", Amount: core.Cents(100000), Date: core.NewDate(2025, 3, 2)},
		{OwnerID: "u1", Kind: core.KindExpense, Label: "Food", Amount: core.Cents(20000), Date: core.NewDate(2024, 12, 24)},
		{OwnerID: "u2", Kind: core.KindExpense, Label: "Food", Amount: core.Cents(99999), Date: core.NewDate(2025, 3, 2)},
	}
	for _, r := range records {
		if _, err := s.CreateTransaction(ctx, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestDashboardService_Dashboard(t *testing.T) {
	s := memory.New()
	seedLedger(t, s)

	got, err := NewDashboardService(s).Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if got.TotalIncome.Cents != 600000 || got.TotalExpenses.Cents != 120000 || got.TotalBalance.Cents != 480000 {
		t.Errorf("unexpected totals %+v", got)
	}
	if len(got.AllIncome) != 2 || len(got.AllExpenses) != 2 || len(got.RecentTransactions) != 4 {
		t.Errorf("unexpected listings: %d incomes, %d expenses, %d recent", len(got.AllIncome), len(got.AllExpenses), len(got.RecentTransactions))
	}
	if got.HealthScore.Status == "" {
		t.Error("expected a health score")
	}
}

func TestDashboardService_Health(t *testing.T) {
	s := memory.New()
	seedLedger(t, s)
	svc := NewDashboardService(s)

	tests := []struct {
		name       string
		period     analytics.Period
		wantPeriod string
	}{
		{"monthly", analytics.MonthlyPeriod(2025, 3), `"period":{"viewMode":"monthly","month":"03","year":"2025"}`},
		{"annual", analytics.AnnualPeriod(2025), `"period":{"viewMode":"annual","year":"2025"}`},
		{"all time", analytics.AllTime(), `"period":{"viewMode":"all"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Health(context.Background(), "u1", tt.period)
			if err != nil {
				t.Fatalf("Health() error = %v", err)
			}
			body, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(body), tt.wantPeriod) || !strings.Contains(string(body), `"score":`) {
				t.Errorf("unexpected body %s", body)
			}
		})
	}

	t.Run("empty period scores zero", func(t *testing.T) {
		got, err := svc.Health(context.Background(), "u1", analytics.MonthlyPeriod(2023, 1))
		if err != nil {
			t.Fatalf("Health() error = %v", err)
		}
		if got.Score != 0 || got.Status != "Getting Started" {
			t.Errorf("expected Getting Started, got %+v", got.HealthScore)
		}
	})
}

func TestDashboardService_StoreFailure(t *testing.T) {
	fs := newFailingStore()
	fs.failList = true

	if _, err := NewDashboardService(fs).Dashboard(context.Background(), "u1"); !errors.Is(err, errStoreDown) {
		t.Errorf("expected store error, got %v", err)
	}
}
