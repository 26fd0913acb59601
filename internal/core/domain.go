package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind tags a transaction as money coming in or going out.
	Kind string

	Transaction struct {
		ID          int64  `json:"id"`
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
		Date        string `json:"date"` // YYYY-MM-DD, kept as entered
		Kind        Kind   `json:"type"`
	}
)

var (
	ErrInvalidKind   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Kinds lists every Kind in display order.
func Kinds() []Kind {
	return []Kind{KindIncome, KindExpense}
}

// ParseKind maps the form/wire value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindIncome, KindExpense:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense:
		return true
	default:
		return false
	}
}

// Label returns the capitalised name used in selectors and headings.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	default:
		return string(k)
	}
}

func (k Kind) String() string {
	return string(k)
}

// Validate checks the fields a persisted transaction must carry to be usable.
func (t Transaction) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("transaction id %d must be positive", t.ID)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("transaction %d: %w: %q", t.ID, ErrInvalidKind, string(t.Kind))
	}
	if !t.Amount.InRange() {
		return fmt.Errorf("transaction %d: %w: out of range", t.ID, ErrInvalidAmount)
	}
	return nil
}
