package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

const (
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodAnnual  BudgetPeriod = "annual"
)

const (
	// DefaultBudgetColor is applied when a budget is created without a color.
	DefaultBudgetColor = "#875cf5"
	// UncategorizedLabel groups records whose label is empty.
	UncategorizedLabel = "Other"
)

type (
	TransactionKind string
	BudgetPeriod    string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record. Label holds the
	// source for incomes and the category for expenses.
	Transaction struct {
		ID        string
		OwnerID   string
		Kind      TransactionKind
		Amount    Money
		Label     string
		Icon      string
		Date      Date
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Budget struct {
		ID        string
		OwnerID   string
		Category  string
		Amount    Money
		Period    BudgetPeriod
		Month     string // "01".."12"
		Year      string // "YYYY"
		Icon      string
		Color     string
		IsActive  bool
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

var (
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmountTooLarge  = errors.New("amount too large")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrEmptyOwner      = errors.New("empty owner")
	ErrEmptyLabel      = errors.New("empty label")
	ErrEmptyCategory   = errors.New("empty category")
	ErrLabelTooLong    = errors.New("label too long (max 100 characters)")
	ErrCategoryTooLong = errors.New("category too long (max 100 characters)")
)

var validationErrors = []error{
	ErrInvalidDay, ErrInvalidMonth, ErrInvalidYear, ErrInvalidAmount, ErrAmountTooLarge, ErrInvalidDate,
	ErrInvalidKind, ErrInvalidPeriod, ErrEmptyOwner, ErrEmptyLabel, ErrEmptyCategory,
	ErrLabelTooLong, ErrCategoryTooLong,
}

// IsValidation reports whether err is one of the record validation errors.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var (
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
)

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ValidMonth reports whether s is a two-digit month "01".."12".
func ValidMonth(s string) bool { return monthPattern.MatchString(s) }

// ValidYear reports whether s is a four-digit year.
func ValidYear(s string) bool { return yearPattern.MatchString(s) }

// FormatMonth renders a month number as the two-digit form used by budgets.
func FormatMonth(m int) string { return fmt.Sprintf("%02d", m) }

// MonthAbbrev returns the English three-letter name of a "01".."12" month,
// or the input unchanged when it is not a valid month.
func MonthAbbrev(month string) string {
	if !ValidMonth(month) {
		return month
	}
	var m int
	fmt.Sscanf(month, "%d", &m)
	return monthAbbrev[m-1]
}

// NewDate returns the calendar day at 12:00 UTC so the day survives any
// timezone shift of at most twelve hours.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)}
}

// DateOf normalises an instant to its UTC calendar day at noon.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), int(u.Month()), u.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.UTC().Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Year returns the UTC year.
func (d Date) Year() int { return d.UTC().Year() }

// Month returns the UTC month 1-12.
func (d Date) Month() int { return int(d.UTC().Month()) }

// Day returns the UTC day of month.
func (d Date) Day() int { return d.UTC().Day() }

// SameDay reports whether both dates fall on the same UTC calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxCents {
		return ErrAmountTooLarge
	}
	return nil
}

func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodAnnual
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(t.Label) == "" {
		return ErrEmptyLabel
	}
	if len(t.Label) > 100 {
		return ErrLabelTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Date.Validate()
}

// Category returns the grouping label, falling back to "Other".
func (t Transaction) Category() string {
	if l := strings.TrimSpace(t.Label); l != "" {
		return l
	}
	return UncategorizedLabel
}

type transactionJSON struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"userId"`
	Source    string          `json:"source,omitempty"`
	Category  string          `json:"category,omitempty"`
	Icon      string          `json:"icon"`
	Amount    Money           `json:"amount"`
	Date      Date            `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Type      TransactionKind `json:"type,omitempty"`
}

// MarshalJSON renders Label as "source" for incomes and "category" for expenses.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return marshalWithType(t, "")
}

func marshalWithType(t Transaction, kind TransactionKind) ([]byte, error) {
	out := transactionJSON{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Icon:      t.Icon,
		Amount:    t.Amount,
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Type:      kind,
	}
	if t.Kind == KindIncome {
		out.Source = t.Label
	} else {
		out.Category = t.Label
	}
	return json.Marshal(out)
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if len(b.Category) > 100 {
		return ErrCategoryTooLong
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if !ValidMonth(b.Month) {
		return ErrInvalidMonth
	}
	if !ValidYear(b.Year) {
		return ErrInvalidYear
	}
	return nil
}

// WithDefaults fills the optional presentation fields.
func (b Budget) WithDefaults() Budget {
	b.Category = strings.TrimSpace(b.Category)
	if b.Period == "" {
		b.Period = PeriodMonthly
	}
	if b.Color == "" {
		b.Color = DefaultBudgetColor
	}
	return b
}

type budgetJSON struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"userId"`
	Category  string       `json:"category"`
	Amount    Money        `json:"amount"`
	Period    BudgetPeriod `json:"period"`
	Month     string       `json:"month"`
	Year      string       `json:"year"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (b Budget) MarshalJSON() ([]byte, error) {
	return json.Marshal(budgetJSON(b))
}
