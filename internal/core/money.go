// Package core provides money parsing and handling utilities.
//
// Amounts are carried as integer cents everywhere; decimal.Decimal is only
// used at the edges, for JSON rendering and for rounding divisions.
package core

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxAmountUnits caps a single amount at one trillion currency units. Sums of
// up to ninety thousand capped amounts still fit in int64 cents.
const (
	MaxAmountUnits int64 = 1_000_000_000_000
	MaxCents             = MaxAmountUnits * 100
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, zero amounts, or
// amounts above MaxAmountUnits.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if iv > MaxAmountUnits {
		return 0, ErrAmountTooLarge
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	if cents > MaxCents {
		return 0, ErrAmountTooLarge
	}
	return cents, nil
}

// Cents builds a Money value.
func Cents(c int64) Money { return Money{Cents: c} }

// MoneyFromDecimal rounds d half away from zero to whole cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

func (m Money) String() string { return m.Decimal().StringFixed(2) }

// DivRoundUnits divides by n and rounds half-up to whole currency units.
func (m Money) DivRoundUnits(n int64) Money {
	if n == 0 {
		return Money{}
	}
	units := m.Decimal().Div(decimal.NewFromInt(n)).Round(0)
	return MoneyFromDecimal(units)
}

// MarshalJSON renders the amount as a bare JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Zero and
// negative amounts are rejected with ErrInvalidAmount.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if raw == "null" {
		return ErrInvalidAmount
	}
	cents, err := ParseDecimalToCents(raw)
	if errors.Is(err, ErrAmountTooLarge) {
		return err
	}
	if err != nil {
		d, derr := decimal.NewFromString(raw)
		if derr != nil || !d.IsPositive() {
			return ErrInvalidAmount
		}
		if d.Shift(2).GreaterThan(decimal.NewFromInt(MaxCents)) {
			return ErrAmountTooLarge
		}
		cents = MoneyFromDecimal(d).Cents
		if cents <= 0 {
			return ErrInvalidAmount
		}
	}
	m.Cents = cents
	return nil
}
