package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/spendtrack/internal/domain"
)

// TransactionUseCase handles transaction business logic.
type TransactionUseCase struct {
	repo TransactionRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(repo TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{repo: repo}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	UserID   string
	Title    string
	Category string
	Amount   decimal.Decimal
}

// CreateTransaction validates the input and stores a new transaction.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateUserID(input.UserID); err != nil {
		return nil, err
	}

	if err := domain.ValidateTitle(input.Title); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCategory(input.Category); err != nil {
		return nil, err
	}

	return uc.repo.Create(ctx, &domain.Transaction{
		UserID:   strings.TrimSpace(input.UserID),
		Title:    strings.TrimSpace(input.Title),
		Category: strings.TrimSpace(input.Category),
		Amount:   input.Amount.Round(domain.AmountPrecision),
	})
}

// ListTransactions returns a user's transactions, most recent first.
// A user without transactions gets an empty slice, not an error.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	txs, err := uc.repo.ListByUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}

	if txs == nil {
		txs = []*domain.Transaction{}
	}

	return txs, nil
}

// DeleteTransaction removes a transaction by ID.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, id int64) error {
	if err := domain.ValidateTransactionID(id); err != nil {
		return err
	}

	return uc.repo.Delete(ctx, id)
}

// GetSummary returns income, expense and balance totals for a user.
func (uc *TransactionUseCase) GetSummary(ctx context.Context, userID string) (domain.Summary, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return domain.Summary{}, err
	}

	return uc.repo.GetSummary(ctx, strings.TrimSpace(userID))
}

// GetCategorySummary returns per-category totals for a user.
func (uc *TransactionUseCase) GetCategorySummary(ctx context.Context, userID string) ([]*domain.CategorySummary, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	summaries, err := uc.repo.GetCategorySummary(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}

	if summaries == nil {
		summaries = []*domain.CategorySummary{}
	}

	return summaries, nil
}
