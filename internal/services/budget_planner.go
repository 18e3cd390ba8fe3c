package services

import (
	"context"
	"errors"
	"fmt"

	"fintastic/internal/core"
	applog "fintastic/internal/log"
	"fintastic/internal/store"
)

// BudgetPlanner copies a monthly budget into the rest of its year.
type BudgetPlanner struct {
	store store.BudgetStore
}

func NewBudgetPlanner(s store.BudgetStore) *BudgetPlanner {
	return &BudgetPlanner{store: s}
}

// Propagate creates a monthly budget for every month after startMonth up to
// December of year, skipping months that already have an active budget for
// category. It returns the number of budgets created; a second identical
// call creates none.
func (p *BudgetPlanner) Propagate(ctx context.Context, owner, category string, amount core.Money, icon, color, year string, startMonth int) (int, error) {
	if startMonth < 1 || startMonth > 12 {
		return 0, core.ErrInvalidMonth
	}

	created := 0
	for m := startMonth + 1; m <= 12; m++ {
		month := core.FormatMonth(m)

		_, exists, err := p.store.FindActiveBudget(ctx, owner, category, month, year)
		if err != nil {
			return created, fmt.Errorf("check %s %s/%s: %w", category, month, year, err)
		}
		if exists {
			continue
		}

		_, err = p.store.CreateBudget(ctx, core.Budget{
			OwnerID:  owner,
			Category: category,
			Amount:   amount,
			Period:   core.PeriodMonthly,
			Month:    month,
			Year:     year,
			Icon:     icon,
			Color:    color,
			IsActive: true,
		}.WithDefaults())
		switch {
		case errors.Is(err, store.ErrDuplicateBudget):
			// lost a race with a concurrent insert
			continue
		case err != nil:
			return created, fmt.Errorf("copy %s to %s/%s: %w", category, month, year, err)
		}
		created++
	}

	applog.FromContext(ctx).DebugContext(ctx, "Propagated budget",
		applog.FieldOwnerID, owner,
		applog.FieldCategory, category,
		applog.FieldYear, year,
		applog.FieldCopied, created)
	return created, nil
}
