// Package analytics turns raw transactions and budgets into period totals,
// budget-vs-spend analyses and a health score. Everything here is pure: no
// I/O, no clocks, no shared state.
package analytics

import (
	"errors"
	"strconv"
	"time"

	"fintastic/internal/core"
)

type ViewMode string

const (
	ViewMonthly ViewMode = "monthly"
	ViewAnnual  ViewMode = "annual"
	// ViewAll matches every record regardless of date.
	ViewAll ViewMode = "all"
)

var (
	ErrInvalidViewMode = errors.New("invalid view mode")
	ErrInvalidPeriod   = errors.New("invalid period")
)

// Period selects the records an aggregation considers. Month is ignored
// outside the monthly view.
type Period struct {
	Mode  ViewMode
	Year  int
	Month int // 1-12
}

func MonthlyPeriod(year, month int) Period {
	return Period{Mode: ViewMonthly, Year: year, Month: month}
}

func AnnualPeriod(year int) Period {
	return Period{Mode: ViewAnnual, Year: year}
}

func AllTime() Period {
	return Period{Mode: ViewAll}
}

// ParseViewMode maps the empty string to the monthly view.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewMonthly:
		return ViewMonthly, nil
	case ViewAnnual:
		return ViewAnnual, nil
	default:
		return "", ErrInvalidViewMode
	}
}

// ParsePeriod builds a period from query-style strings. Missing month or
// year fall back to the values of now.
func ParsePeriod(viewMode, month, year string, now time.Time) (Period, error) {
	mode, err := ParseViewMode(viewMode)
	if err != nil {
		return Period{}, err
	}
	now = now.UTC()
	p := Period{Mode: mode, Year: now.Year(), Month: int(now.Month())}
	if year != "" {
		if !core.ValidYear(year) {
			return Period{}, ErrInvalidPeriod
		}
		p.Year, _ = strconv.Atoi(year)
	}
	if month != "" {
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			return Period{}, ErrInvalidPeriod
		}
		p.Month = m
	}
	return p, nil
}

// Contains reports whether d falls inside the period, using UTC calendar
// components.
func (p Period) Contains(d core.Date) bool {
	switch p.Mode {
	case ViewAll:
		return true
	case ViewAnnual:
		return d.Year() == p.Year
	default:
		return d.Year() == p.Year && d.Month() == p.Month
	}
}

// MonthString returns the budget-style "MM" month.
func (p Period) MonthString() string { return core.FormatMonth(p.Month) }

// YearString returns the budget-style "YYYY" year.
func (p Period) YearString() string { return strconv.Itoa(p.Year) }

// IncludesBudget reports whether an active budget belongs to the period.
func (p Period) IncludesBudget(b core.Budget) bool {
	if !b.IsActive {
		return false
	}
	switch p.Mode {
	case ViewAll:
		return true
	case ViewAnnual:
		return b.Year == p.YearString()
	default:
		return b.Year == p.YearString() && b.Month == p.MonthString()
	}
}
