package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/spendtrack/internal/domain"
	"github.com/iho/spendtrack/internal/usecase"
)

// CreateTransactionRequest represents a request to record a transaction.
// Amount accepts a JSON number or a numeric string.
type CreateTransactionRequest struct {
	UserID   string              `json:"user_id"`
	Title    string              `json:"title"`
	Amount   decimal.NullDecimal `json:"amount"`
	Category string              `json:"category"`
}

// Validate checks presence of fields the decoder cannot enforce.
func (r *CreateTransactionRequest) Validate() error {
	if !r.Amount.Valid {
		return fmt.Errorf("%w: amount is required", domain.ErrValidation)
	}

	return nil
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		UserID:   r.UserID,
		Title:    r.Title,
		Amount:   r.Amount.Decimal,
		Category: r.Category,
	}
}
