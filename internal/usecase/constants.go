package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultJobTimeout bounds a single run of a scheduled job
	DefaultJobTimeout = 30 * time.Second
)
