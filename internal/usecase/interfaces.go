package usecase

import (
	"context"
	"time"

	"github.com/iho/spendtrack/internal/domain"
)

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
	GetSummary(ctx context.Context, userID string) (domain.Summary, error)
	GetCategorySummary(ctx context.Context, userID string) ([]*domain.CategorySummary, error)
}

// RateLimiter checks whether a key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (domain.RateLimitDecision, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release removes the key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// Retrier retries an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
