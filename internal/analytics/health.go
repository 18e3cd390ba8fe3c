package analytics

import (
	"fintastic/internal/core"
)

// HealthInput is the aggregate a health score is derived from.
type HealthInput struct {
	Income       core.Money
	Expenses     core.Money
	Balance      core.Money
	IncomeCount  int
	ExpenseCount int
}

// HealthInputFrom builds the score input from period totals.
func HealthInputFrom(income, expenses Totals) HealthInput {
	return HealthInput{
		Income:       income.Total,
		Expenses:     expenses.Total,
		Balance:      income.Total.Sub(expenses.Total),
		IncomeCount:  income.Count,
		ExpenseCount: expenses.Count,
	}
}

type band struct {
	limit  float64
	points int
}

// Bands are evaluated top-down; the first match wins.
var (
	savingsBands  = []band{{0.30, 40}, {0.20, 35}, {0.10, 25}, {0.05, 15}, {0.01, 10}, {-0.10, 5}}
	expenseBands  = []band{{0.50, 25}, {0.70, 20}, {0.85, 15}, {0.95, 10}, {1.10, 5}}
	activityBand  = []band{{15, 20}, {10, 15}, {5, 10}, {2, 5}}
	stabilityBand = []band{{4, 10}, {2, 7}, {1, 4}}
	balanceBands  = []band{{0.25, 5}, {0.10, 3}, {0.01, 1}}
)

type statusBand struct {
	min    int
	status string
}

var statusBands = []statusBand{
	{85, "Excellent"},
	{70, "Very Good"},
	{55, "Good"},
	{40, "Fair"},
	{25, "Needs Work"},
	{0, "Poor"},
}

const maxScore = 100

// atLeast returns the points of the first band whose limit value reaches.
func atLeast(bands []band, value float64) int {
	for _, b := range bands {
		if value >= b.limit {
			return b.points
		}
	}
	return 0
}

// atMost returns the points of the first band whose limit value stays under.
func atMost(bands []band, value float64) int {
	for _, b := range bands {
		if value <= b.limit {
			return b.points
		}
	}
	return 0
}

func ratio(num, den core.Money) float64 {
	return float64(num.Cents) / float64(den.Cents)
}

// Score computes the financial health score. It is deterministic for a
// given input and always within [0, 100].
func Score(in HealthInput) core.HealthScore {
	switch {
	case in.IncomeCount+in.ExpenseCount == 0:
		return core.HealthScore{
			Score:   0,
			Status:  "Getting Started",
			Message: "Add your first transaction to begin tracking your financial health!",
		}
	case in.Income.Cents == 0 && in.Balance.Cents > 0:
		return core.HealthScore{
			Score:   30,
			Status:  "Fair",
			Message: "You have savings but no recorded income. Consider adding income transactions.",
		}
	case in.Income.Cents == 0 && in.Expenses.Cents > 0:
		return core.HealthScore{
			Score:   15,
			Status:  "Needs Work",
			Message: "Only expenses recorded. Add income transactions for better insights.",
		}
	}

	var bd core.HealthBreakdown
	if in.Income.Cents > 0 {
		bd.Savings = atLeast(savingsBands, ratio(in.Income.Sub(in.Expenses), in.Income))
		bd.ExpenseRatio = atMost(expenseBands, ratio(in.Expenses, in.Income))
		if in.Balance.Cents > 0 {
			bd.BalanceBonus = atLeast(balanceBands, ratio(in.Balance, in.Income))
		}
	}
	bd.Activity = atLeast(activityBand, float64(in.IncomeCount+in.ExpenseCount))
	bd.IncomeStability = atLeast(stabilityBand, float64(in.IncomeCount))

	score := bd.Savings + bd.ExpenseRatio + bd.Activity + bd.IncomeStability + bd.BalanceBonus
	if score > maxScore {
		score = maxScore
	}

	return core.HealthScore{
		Score:     score,
		Status:    statusFor(score),
		Message:   messageFor(score, bd),
		Breakdown: bd,
	}
}

func statusFor(score int) string {
	for _, b := range statusBands {
		if score >= b.min {
			return b.status
		}
	}
	return "Poor"
}

func messageFor(score int, bd core.HealthBreakdown) string {
	switch {
	case score >= 85:
		return "Outstanding financial management! Keep up the excellent work!"
	case score >= 70:
		return "Very strong financial health! You're doing great!"
	case score >= 55:
		return "Good financial management! Small improvements can boost your score."
	case score >= 40:
		if bd.Savings < 15 {
			return "Focus on increasing your savings rate to improve your score."
		}
		if bd.ExpenseRatio < 10 {
			return "Consider reviewing your spending habits to optimize your budget."
		}
		return "Room for improvement in spending habits and savings."
	case score >= 25:
		return "Focus on budgeting and building consistent saving habits."
	default:
		return "Consider reviewing your budget and tracking expenses more carefully."
	}
}
