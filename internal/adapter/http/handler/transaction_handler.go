package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/spendtrack/internal/adapter/http/dto"
	"github.com/iho/spendtrack/internal/domain"
	"github.com/iho/spendtrack/internal/infrastructure/metrics"
	"github.com/iho/spendtrack/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetSummary(ctx context.Context, userID string) (domain.Summary, error)
	GetCategorySummary(ctx context.Context, userID string) ([]*domain.CategorySummary, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
	metrics       *metrics.Metrics
}

// NewTransactionHandler creates a new TransactionHandler. m may be nil.
func NewTransactionHandler(transactionUC TransactionService, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC, metrics: m}
}

// Create records a new transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		HandleError(w, r, err)
		return
	}

	tx, err := h.transactionUC.CreateTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	if h.metrics != nil {
		kind := "expense"
		if tx.IsIncome() {
			kind = "income"
		}
		h.metrics.TransactionsCreated.Inc()
		h.metrics.TransactionAmount.WithLabelValues(kind).Observe(tx.Amount.Abs().InexactFloat64())
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// ListByUser lists a user's transactions, newest first.
func (h *TransactionHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactionUC.ListTransactions(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Delete removes a transaction by id.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		HandleError(w, r, fmt.Errorf("%w: transaction id must be a positive integer, got %q", domain.ErrValidation, raw))
		return
	}

	if err := h.transactionUC.DeleteTransaction(r.Context(), id); err != nil {
		HandleError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.TransactionsDeleted.Inc()
	}

	writeMessage(w, http.StatusOK, dto.MessageDeleted)
}

// Summary returns the user's income, expense and balance.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.transactionUC.GetSummary(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// CategorySummary returns the user's totals per category.
func (h *TransactionHandler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	items, err := h.transactionUC.GetCategorySummary(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CategorySummariesFromDomain(items))
}
