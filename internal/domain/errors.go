package domain

import (
	"errors"
	"fmt"
)

var (
	// Transaction errors
	ErrValidation          = errors.New("validation failed")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Rate limiting errors
	ErrRateLimitExceeded      = errors.New("rate limit exceeded")
	ErrRateLimiterUnavailable = errors.New("rate limiter unavailable")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// DatabaseError wraps a failure reported by the database driver.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError wraps err unless it is nil or already a domain error.
func NewDatabaseError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTransactionNotFound) {
		return err
	}

	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}

	return &DatabaseError{Op: op, Err: err}
}

// StartupError is returned when the process cannot reach a serving state.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}
