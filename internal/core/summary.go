package core

const (
	StatusGood    BudgetStatus = "good"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

type BudgetStatus string

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// BudgetRow is one line of a budget analysis. Month, Year and MonthlyAmount
// are only set for the view they belong to.
type BudgetRow struct {
	ID            string       `json:"id"`
	Category      string       `json:"category"`
	Amount        Money        `json:"amount"`
	Period        BudgetPeriod `json:"period"`
	Month         string       `json:"month,omitempty"`
	Year          string       `json:"year,omitempty"`
	Icon          string       `json:"icon"`
	Color         string       `json:"color"`
	MonthlyAmount *Money       `json:"monthlyAmount,omitempty"`
	Spent         Money        `json:"spent"`
	Percentage    float64      `json:"percentage"`
	Remaining     Money        `json:"remaining"`
	IsOverBudget  bool         `json:"isOverBudget"`
	Status        BudgetStatus `json:"status"`
}

type BudgetAnalysis struct {
	Budgets     []BudgetRow `json:"budgets"`
	TotalBudget Money       `json:"totalBudget"`
	TotalSpent  Money       `json:"totalSpent"`
	ViewMode    string      `json:"viewMode"`
}

// HealthBreakdown holds the points awarded per scoring component.
type HealthBreakdown struct {
	Savings         int `json:"savings"`
	ExpenseRatio    int `json:"expenseRatio"`
	Activity        int `json:"activity"`
	IncomeStability int `json:"incomeStability"`
	BalanceBonus    int `json:"balanceBonus"`
}

type HealthScore struct {
	Score     int             `json:"score"`
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Breakdown HealthBreakdown `json:"breakdown"`
}

// RecentTransaction tags a transaction with its kind for mixed listings.
type RecentTransaction struct {
	Transaction
	Type TransactionKind
}

func (r RecentTransaction) MarshalJSON() ([]byte, error) {
	return marshalWithType(r.Transaction, r.Type)
}

type Dashboard struct {
	TotalBalance       Money               `json:"totalBalance"`
	TotalIncome        Money               `json:"totalIncome"`
	TotalExpenses      Money               `json:"totalExpenses"`
	AllIncome          []Transaction       `json:"allIncome"`
	AllExpenses        []Transaction       `json:"allExpenses"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`
	HealthScore        HealthScore         `json:"healthScore"`
}
