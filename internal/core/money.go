// Package core holds the ledger's domain types.
//
// Money wraps a decimal so that sums of entered amounts stay exact and the
// persisted JSON keeps amounts as plain numbers.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on accepted amounts. decimal.NewFromString takes any exponent, and
// rendering 1e10000000 expands it to ten million digits.
const (
	maxAmountDigits   = 20
	maxAmountExponent = 20
)

// Money is a decimal amount. The zero value is 0.
type Money struct {
	Value decimal.Decimal
}

// NewMoney builds Money from a string literal. It panics on malformed input and
// is meant for constants and tests.
func NewMoney(s string) Money {
	return Money{Value: decimal.RequireFromString(s)}
}

// ParseAmount converts free numeric text to Money.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Sign is
// not checked: negative and zero amounts are valid entries.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Value: d}
	if !m.InRange() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// InRange reports whether the amount has at most 20 significant digits and an
// exponent within ±20, the range a float64 entry can express.
func (m Money) InRange() bool {
	exp := m.Value.Exponent()
	if exp < -maxAmountExponent || exp > maxAmountExponent {
		return false
	}
	return m.Value.NumDigits() <= maxAmountDigits
}

func (m Money) Add(o Money) Money {
	return Money{Value: m.Value.Add(o.Value)}
}

func (m Money) Sub(o Money) Money {
	return Money{Value: m.Value.Sub(o.Value)}
}

func (m Money) Equal(o Money) bool {
	return m.Value.Equal(o.Value)
}

func (m Money) IsZero() bool {
	return m.Value.IsZero()
}

// Fixed renders the amount with exactly two decimals ("800.00").
func (m Money) Fixed() string {
	return m.Value.StringFixed(2)
}

// Format renders the amount for display, e.g. Format("Rs.") -> "Rs.800.00".
// Negative amounts put the sign before the symbol.
func (m Money) Format(symbol string) string {
	if m.Value.IsNegative() {
		return "-" + symbol + m.Value.Neg().StringFixed(2)
	}
	return symbol + m.Value.StringFixed(2)
}

func (m Money) String() string {
	return m.Value.String()
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Value.UnmarshalJSON(data)
}
