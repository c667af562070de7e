// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents so that sums stay exact; decimal
// arithmetic is only used at the edges when parsing and formatting.
package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string to Money, rounding half away from zero
// to two decimal places. Both dot (12.34) and comma (12,34) separators are
// accepted. Zero and negative values are allowed.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents
//	ParseMoney("-3")     -> -300 cents
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, NewValidationError("amount", "empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, NewValidationError("amount", "invalid amount %q", s)
	}
	return MoneyFromDecimal(d)
}

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// MoneyFromDecimal rounds d to cents. Values whose cent count does not fit
// in an int64 are rejected rather than wrapped.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Round(2).Shift(2)
	if cents.LessThan(minCents) || cents.GreaterThan(maxCents) {
		return Money{}, NewValidationError("amount", "out of range")
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats m with exactly two decimals, e.g. "4.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// MarshalJSON writes m as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	money, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = money
	return nil
}
