package analytics

import (
	"fintastic/internal/core"
)

const (
	overThreshold    = 100.0
	warningThreshold = 80.0
)

// ClassifyStatus maps a spend percentage to a budget status. Exactly 100%
// counts as over.
func ClassifyStatus(percentage float64) core.BudgetStatus {
	switch {
	case percentage >= overThreshold:
		return core.StatusOver
	case percentage >= warningThreshold:
		return core.StatusWarning
	default:
		return core.StatusGood
	}
}

// Percentage returns spent as a percentage of amount, or 0 for a zero amount.
func Percentage(spent, amount core.Money) float64 {
	if amount.Cents <= 0 {
		return 0
	}
	return float64(spent.Cents) * 100 / float64(amount.Cents)
}

// ComputeBudgetAnalysis compares active budgets of the period with the
// expenses recorded in it. The monthly view yields one row per budget; the
// annual view yields one row per category with the year's budgets summed.
func ComputeBudgetAnalysis(budgets []core.Budget, expenses []core.Transaction, p Period) core.BudgetAnalysis {
	mode := p.Mode
	if mode != ViewAnnual {
		mode = ViewMonthly
		p.Mode = ViewMonthly
	}

	spent := ComputeTotals(expenses, p).ByCategory

	var rows []core.BudgetRow
	if mode == ViewAnnual {
		rows = annualRows(budgets, spent, p)
	} else {
		rows = monthlyRows(budgets, spent, p)
	}

	out := core.BudgetAnalysis{
		Budgets:  rows,
		ViewMode: string(mode),
	}
	for _, r := range rows {
		out.TotalBudget = out.TotalBudget.Add(r.Amount)
		out.TotalSpent = out.TotalSpent.Add(r.Spent)
	}
	return out
}

func monthlyRows(budgets []core.Budget, spent map[string]core.Money, p Period) []core.BudgetRow {
	rows := make([]core.BudgetRow, 0, len(budgets))
	for _, b := range budgets {
		if !p.IncludesBudget(b) {
			continue
		}
		row := core.BudgetRow{
			ID:       b.ID,
			Category: b.Category,
			Amount:   b.Amount,
			Period:   b.Period,
			Month:    b.Month,
			Year:     b.Year,
			Icon:     b.Icon,
			Color:    b.Color,
		}
		fillSpend(&row, spent[b.Category])
		rows = append(rows, row)
	}
	return rows
}

func annualRows(budgets []core.Budget, spent map[string]core.Money, p Period) []core.BudgetRow {
	var order []string
	grouped := make(map[string]*core.BudgetRow)
	for _, b := range budgets {
		if !p.IncludesBudget(b) {
			continue
		}
		row, ok := grouped[b.Category]
		if !ok {
			row = &core.BudgetRow{
				ID:       b.Category + "_annual",
				Category: b.Category,
				Period:   core.PeriodAnnual,
				Icon:     b.Icon,
				Color:    b.Color,
			}
			grouped[b.Category] = row
			order = append(order, b.Category)
		}
		row.Amount = row.Amount.Add(b.Amount)
	}

	rows := make([]core.BudgetRow, 0, len(order))
	for _, cat := range order {
		row := *grouped[cat]
		monthly := row.Amount.DivRoundUnits(12)
		row.MonthlyAmount = &monthly
		fillSpend(&row, spent[cat])
		rows = append(rows, row)
	}
	return rows
}

func fillSpend(row *core.BudgetRow, spent core.Money) {
	row.Spent = spent
	row.Percentage = Percentage(spent, row.Amount)
	row.Remaining = row.Amount.Sub(spent)
	row.IsOverBudget = spent.Cents > row.Amount.Cents
	row.Status = ClassifyStatus(row.Percentage)
}
