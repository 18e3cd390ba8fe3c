package analytics

import (
	"sort"

	"fintastic/internal/core"
)

// RecentPerKind is how many of the newest records of each kind appear in
// the recent transactions list.
const RecentPerKind = 5

// BuildDashboard assembles the all-time overview for one owner.
func BuildDashboard(incomes, expenses []core.Transaction) core.Dashboard {
	incomeTotals := ComputeTotals(incomes, AllTime())
	expenseTotals := ComputeTotals(expenses, AllTime())

	return core.Dashboard{
		TotalBalance:       incomeTotals.Total.Sub(expenseTotals.Total),
		TotalIncome:        incomeTotals.Total,
		TotalExpenses:      expenseTotals.Total,
		AllIncome:          SortByDateDesc(incomes),
		AllExpenses:        SortByDateDesc(expenses),
		RecentTransactions: RecentTransactions(incomes, expenses, RecentPerKind),
		HealthScore:        Score(HealthInputFrom(incomeTotals, expenseTotals)),
	}
}

// SortByDateDesc returns a copy ordered by transaction date, newest first.
func SortByDateDesc(records []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// RecentTransactions merges the n most recently created records of each
// kind, newest first.
func RecentTransactions(incomes, expenses []core.Transaction, n int) []core.RecentTransaction {
	out := make([]core.RecentTransaction, 0, 2*n)
	for _, t := range newestCreated(incomes, n) {
		out = append(out, core.RecentTransaction{Transaction: t, Type: core.KindIncome})
	}
	for _, t := range newestCreated(expenses, n) {
		out = append(out, core.RecentTransaction{Transaction: t, Type: core.KindExpense})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func newestCreated(records []core.Transaction, n int) []core.Transaction {
	sorted := make([]core.Transaction, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
