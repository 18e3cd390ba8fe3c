package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fintastic/internal/analytics"
	"fintastic/internal/core"
	applog "fintastic/internal/log"
	"fintastic/internal/store"
)

// NewBudget is the input of BudgetService.Create.
type NewBudget struct {
	Category           string
	Amount             core.Money
	Period             core.BudgetPeriod
	Month              string
	Year               string
	Icon               string
	Color              string
	CopyToFutureMonths bool
}

// BudgetPatch holds the fields an update may change. Nil fields are kept.
// Month and year cannot be changed after creation.
type BudgetPatch struct {
	Category *string
	Amount   *core.Money
	Period   *core.BudgetPeriod
	Icon     *string
	Color    *string
}

type CreatedBudget struct {
	Budget      core.Budget `json:"budget"`
	CopiedCount int         `json:"copiedCount"`
	Message     string      `json:"message"`
}

type BudgetService struct {
	store   store.RecordStore
	planner *BudgetPlanner
	cache   Invalidator
}

func NewBudgetService(s store.RecordStore, inv Invalidator) *BudgetService {
	return &BudgetService{
		store:   s,
		planner: NewBudgetPlanner(s),
		cache:   orNoop(inv),
	}
}

// Create stores a new active budget and, for monthly budgets with
// CopyToFutureMonths set, copies it into the remaining months of the year.
func (s *BudgetService) Create(ctx context.Context, owner string, in NewBudget) (CreatedBudget, error) {
	b := core.Budget{
		OwnerID:  owner,
		Category: in.Category,
		Amount:   in.Amount,
		Period:   in.Period,
		Month:    in.Month,
		Year:     in.Year,
		Icon:     in.Icon,
		Color:    in.Color,
		IsActive: true,
	}.WithDefaults()
	if err := b.Validate(); err != nil {
		return CreatedBudget{}, err
	}

	if _, exists, err := s.store.FindActiveBudget(ctx, owner, b.Category, b.Month, b.Year); err != nil {
		return CreatedBudget{}, fmt.Errorf("check duplicate budget: %w", err)
	} else if exists {
		return CreatedBudget{}, &store.DuplicateBudgetError{Category: b.Category, Month: b.Month, Year: b.Year}
	}

	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return CreatedBudget{}, fmt.Errorf("create budget: %w", err)
	}
	defer invalidate(ctx, s.cache, owner, applog.OpCreate)

	out := CreatedBudget{Budget: created}
	if in.CopyToFutureMonths && created.Period == core.PeriodMonthly {
		start, _ := strconv.Atoi(created.Month)
		n, err := s.planner.Propagate(ctx, owner, created.Category, created.Amount, created.Icon, created.Color, created.Year, start)
		if err != nil {
			return CreatedBudget{}, fmt.Errorf("propagate budget: %w", err)
		}
		out.CopiedCount = n
	}
	out.Message = createdMessage(out.CopiedCount)
	return out, nil
}

func createdMessage(copied int) string {
	if copied > 0 {
		return fmt.Sprintf("Budget created successfully and copied to %d future months", copied)
	}
	return "Budget created successfully"
}

// List returns the owner's active budgets, newest first.
func (s *BudgetService) List(ctx context.Context, owner string) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, owner, store.BudgetFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// Analysis compares the owner's budgets in p with the expenses of p.
func (s *BudgetService) Analysis(ctx context.Context, owner string, p analytics.Period) (core.BudgetAnalysis, error) {
	filter := store.BudgetFilter{Year: p.YearString(), ActiveOnly: true}
	if p.Mode != analytics.ViewAnnual {
		filter.Month = p.MonthString()
	}
	budgets, err := s.store.ListBudgets(ctx, owner, filter)
	if err != nil {
		return core.BudgetAnalysis{}, fmt.Errorf("load budgets: %w", err)
	}
	if len(budgets) == 0 {
		return analytics.ComputeBudgetAnalysis(nil, nil, p), nil
	}
	expenses, err := s.store.ListTransactions(ctx, core.KindExpense, owner)
	if err != nil {
		return core.BudgetAnalysis{}, fmt.Errorf("load expenses: %w", err)
	}
	return analytics.ComputeBudgetAnalysis(budgets, expenses, p), nil
}

// Update applies patch to the owner's budget id.
func (s *BudgetService) Update(ctx context.Context, owner, id string, patch BudgetPatch) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, owner, id)
	if err != nil {
		return core.Budget{}, err
	}

	if patch.Category != nil {
		if c := strings.TrimSpace(*patch.Category); c != "" {
			b.Category = c
		}
	}
	if patch.Amount != nil {
		b.Amount = *patch.Amount
	}
	if patch.Period != nil && *patch.Period != "" {
		b.Period = *patch.Period
	}
	if patch.Icon != nil {
		b.Icon = *patch.Icon
	}
	if patch.Color != nil && *patch.Color != "" {
		b.Color = *patch.Color
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	updated, err := s.store.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	invalidate(ctx, s.cache, owner, applog.OpUpdate)
	return updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteBudget(ctx, owner, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, owner, applog.OpDelete)
	return nil
}
