package core

// Totals is the income/expense tally over a sequence of transactions.
type Totals struct {
	Income  Money
	Expense Money
}

// Balance is income minus expense. The "Available" card shows the same figure.
func (t Totals) Balance() Money {
	return t.Income.Sub(t.Expense)
}

// Aggregate sums amounts grouped by kind in a single pass.
func Aggregate(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Kind {
		case KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case KindExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}
