package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry owned by a user.
// A positive Amount is income, a negative Amount is an expense.
type Transaction struct {
	CreatedAt time.Time
	ID        int64
	UserID    string
	Title     string
	Category  string
	Amount    decimal.Decimal
}

// IsIncome reports whether the transaction adds to the balance.
func (t *Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Summary holds aggregated totals for a user.
// Expense is reported as a non-negative magnitude, so Balance = Income - Expense.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// NewSummary builds a Summary from the raw sums of positive and negative amounts.
func NewSummary(positive, negative decimal.Decimal) Summary {
	income := positive
	expense := negative.Abs()

	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// CategorySummary holds per-category totals for a user.
type CategorySummary struct {
	Category string
	Count    int64
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Total    decimal.Decimal
}
