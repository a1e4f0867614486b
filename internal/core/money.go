// Package core holds the domain types shared by every other package.
//
// Money is stored as integer cents so that database sums and in-process
// reductions never accumulate floating-point error. Decimal strings cross
// the boundary through github.com/shopspring/decimal.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string to Money with half-up rounding on
// the third decimal place. Both dot and comma separators are accepted.
// Zero and negative amounts are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents (half-up)
func ParseAmount(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: cents.IntPart()}
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// Decimal returns the amount as an exact two-place decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimal places, e.g. "12.34".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON emits a plain JSON number with two decimal places so API
// consumers see 12.34, not a cent count or a quoted string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
// Range checks happen here; sign checks belong to Validate.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return ErrInvalidAmount
	}
	m.Cents = cents.IntPart()
	return nil
}
