package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintastic/internal/analytics"
	"fintastic/internal/core"
	"fintastic/internal/store"
)

// PeriodInfo echoes the period a health score was computed for.
type PeriodInfo struct {
	ViewMode string `json:"viewMode"`
	Month    string `json:"month,omitempty"`
	Year     string `json:"year,omitempty"`
}

// PeriodHealth is a health score scoped to a period.
type PeriodHealth struct {
	core.HealthScore
	Period PeriodInfo `json:"period"`
}

type DashboardService struct {
	store store.TransactionStore
}

func NewDashboardService(s store.TransactionStore) *DashboardService {
	return &DashboardService{store: s}
}

// load fetches incomes and expenses concurrently.
func (s *DashboardService) load(ctx context.Context, owner string) (incomes, expenses []core.Transaction, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = s.store.ListTransactions(ctx, core.KindIncome, owner)
		if err != nil {
			return fmt.Errorf("load incomes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListTransactions(ctx, core.KindExpense, owner)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return incomes, expenses, nil
}

// Dashboard builds the all-time overview of owner.
func (s *DashboardService) Dashboard(ctx context.Context, owner string) (core.Dashboard, error) {
	incomes, expenses, err := s.load(ctx, owner)
	if err != nil {
		return core.Dashboard{}, err
	}
	return analytics.BuildDashboard(incomes, expenses), nil
}

// Health scores the records of owner that fall inside p.
func (s *DashboardService) Health(ctx context.Context, owner string, p analytics.Period) (PeriodHealth, error) {
	incomes, expenses, err := s.load(ctx, owner)
	if err != nil {
		return PeriodHealth{}, err
	}
	score := analytics.Score(analytics.HealthInputFrom(
		analytics.ComputeTotals(incomes, p),
		analytics.ComputeTotals(expenses, p),
	))

	info := PeriodInfo{ViewMode: string(p.Mode)}
	switch p.Mode {
	case analytics.ViewMonthly:
		info.Month, info.Year = p.MonthString(), p.YearString()
	case analytics.ViewAnnual:
		info.Year = p.YearString()
	}
	return PeriodHealth{HealthScore: score, Period: info}, nil
}
