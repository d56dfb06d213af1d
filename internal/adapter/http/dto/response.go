package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/iho/spendtrack/internal/domain"
)

const dateLayout = "2006-01-02"

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id"`
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	CreatedAt string      `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Title:     t.Title,
		Amount:    money(t.Amount),
		Category:  t.Category,
		CreatedAt: t.CreatedAt.Format(dateLayout),
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// SummaryResponse holds a user's totals. Expense is reported as a positive number.
type SummaryResponse struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Balance json.Number `json:"balance"`
}

// SummaryFromDomain converts a domain summary to response.
func SummaryFromDomain(s domain.Summary) *SummaryResponse {
	return &SummaryResponse{
		Income:  money(s.Income),
		Expense: money(s.Expense),
		Balance: money(s.Balance),
	}
}

// CategorySummaryResponse holds totals for one category.
type CategorySummaryResponse struct {
	Category string      `json:"category"`
	Count    int64       `json:"count"`
	Income   json.Number `json:"income"`
	Expense  json.Number `json:"expense"`
	Total    json.Number `json:"total"`
}

// CategorySummariesFromDomain converts per-category summaries to responses.
func CategorySummariesFromDomain(items []*domain.CategorySummary) []*CategorySummaryResponse {
	result := make([]*CategorySummaryResponse, len(items))
	for i, c := range items {
		result[i] = &CategorySummaryResponse{
			Category: c.Category,
			Count:    c.Count,
			Income:   money(c.Income),
			Expense:  money(c.Expense),
			Total:    money(c.Total),
		}
	}
	return result
}

// MessageResponse is the body of acknowledgements and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// money renders d with two decimals as a bare JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// Fixed client-facing messages.
const (
	MessageHealthy            = "status is ok"
	MessageDeleted            = "Transaction deleted successfully"
	MessageNotFound           = "Transaction not found"
	MessageTooManyRequests    = "Too many request, try again later."
	MessageInternalError      = "Something went wrong"
	MessageUnauthorized       = "Unauthorized"
	MessageIdempotencyPending = "A request with this Idempotency-Key is still being processed"
)
