package postgres

import (
	"context"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/iho/spendtrack/internal/domain"
	"github.com/iho/spendtrack/internal/infrastructure/metrics"
	"github.com/iho/spendtrack/internal/infrastructure/postgres/generated"
	"github.com/iho/spendtrack/internal/usecase"
)

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
	txm     *TxManager
	retrier usecase.Retrier
	metrics *metrics.Metrics
}

// RepositoryOption configures a TransactionRepository.
type RepositoryOption func(*TransactionRepository)

// WithRetrier overrides the default retrier.
func WithRetrier(r usecase.Retrier) RepositoryOption {
	return func(repo *TransactionRepository) { repo.retrier = r }
}

// WithMetrics counts database errors per operation.
func WithMetrics(m *metrics.Metrics) RepositoryOption {
	return func(repo *TransactionRepository) { repo.metrics = m }
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool Pool, opts ...RepositoryOption) *TransactionRepository {
	repo := &TransactionRepository{
		queries: generated.New(pool),
		txm:     NewTxManager(pool),
		retrier: NewRetrier(),
	}

	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

// Create inserts a transaction and returns the stored row.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	var row generated.Transaction

	err := r.retrier.Retry(ctx, func() error {
		var err error
		row, err = r.queries.CreateTransaction(ctx, createParams(t))
		return err
	})
	if err != nil {
		return nil, r.dbError("create", err)
	}

	return rowToTransaction(row), nil
}

// CreateMany inserts all transactions atomically.
func (r *TransactionRepository) CreateMany(ctx context.Context, txs []*domain.Transaction) ([]*domain.Transaction, error) {
	created := make([]*domain.Transaction, 0, len(txs))

	err := r.txm.WithTx(ctx, func(q *generated.Queries) error {
		for _, t := range txs {
			row, err := q.CreateTransaction(ctx, createParams(t))
			if err != nil {
				return err
			}
			created = append(created, rowToTransaction(row))
		}
		return nil
	})
	if err != nil {
		return nil, r.dbError("create_many", err)
	}

	return created, nil
}

// ListByUser returns the user's transactions, newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	var rows []generated.Transaction

	err := r.retrier.Retry(ctx, func() error {
		var err error
		rows, err = r.queries.ListTransactionsByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, r.dbError("list", err)
	}

	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, rowToTransaction(row))
	}

	return txs, nil
}

// Delete removes a transaction by id.
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	// ids are SERIAL; anything outside int4 cannot exist
	if id <= 0 || id > math.MaxInt32 {
		return domain.ErrTransactionNotFound
	}

	var affected int64

	err := r.retrier.Retry(ctx, func() error {
		var err error
		affected, err = r.queries.DeleteTransaction(ctx, int32(id))
		return err
	})
	if err != nil {
		return r.dbError("delete", err)
	}

	if affected == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// GetSummary aggregates the user's income, expense and balance.
func (r *TransactionRepository) GetSummary(ctx context.Context, userID string) (domain.Summary, error) {
	var row generated.GetUserSummaryRow

	err := r.retrier.Retry(ctx, func() error {
		var err error
		row, err = r.queries.GetUserSummary(ctx, userID)
		return err
	})
	if err != nil {
		return domain.Summary{}, r.dbError("summary", err)
	}

	return domain.NewSummary(numericToDecimal(row.Income), numericToDecimal(row.Expense)), nil
}

// GetCategorySummary aggregates the user's transactions per category.
func (r *TransactionRepository) GetCategorySummary(ctx context.Context, userID string) ([]*domain.CategorySummary, error) {
	var rows []generated.GetCategorySummaryRow

	err := r.retrier.Retry(ctx, func() error {
		var err error
		rows, err = r.queries.GetCategorySummary(ctx, userID)
		return err
	})
	if err != nil {
		return nil, r.dbError("category_summary", err)
	}

	out := make([]*domain.CategorySummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.CategorySummary{
			Category: row.Category,
			Count:    row.Count,
			Income:   numericToDecimal(row.Income),
			Expense:  numericToDecimal(row.Expense).Abs(),
			Total:    numericToDecimal(row.Total),
		})
	}

	return out, nil
}

// Count returns the number of stored transactions.
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, r.dbError("count", err)
	}

	return n, nil
}

func (r *TransactionRepository) dbError(op string, err error) error {
	if r.metrics != nil {
		r.metrics.DBErrors.WithLabelValues(op).Inc()
	}

	return domain.NewDatabaseError(op, err)
}

func createParams(t *domain.Transaction) generated.CreateTransactionParams {
	return generated.CreateTransactionParams{
		UserID:   t.UserID,
		Title:    t.Title,
		Amount:   decimalToNumeric(t.Amount),
		Category: t.Category,
	}
}
