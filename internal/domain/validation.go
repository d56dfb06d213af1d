package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTextLength   = 255
	AmountPrecision = 2
	// MaxAmount matches DECIMAL(10,2): eight integer digits.
	MaxAmount = "100000000"
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateUserID validates the owner identifier.
func ValidateUserID(userID string) error {
	return validateText("user_id", userID)
}

// ValidateTitle validates a transaction title.
func ValidateTitle(title string) error {
	return validateText("title", title)
}

// ValidateCategory validates a transaction category.
func ValidateCategory(category string) error {
	return validateText("category", category)
}

func validateText(field, value string) error {
	value = strings.TrimSpace(value)

	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}

	if utf8.RuneCountInString(value) > MaxTextLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, field, MaxTextLength)
	}

	return nil
}

// ValidateAmount validates a signed transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return fmt.Errorf("%w: amount must be non-zero", ErrValidation)
	}

	if amount.Exponent() < -AmountPrecision && !amount.Equal(amount.Round(AmountPrecision)) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", ErrValidation, AmountPrecision)
	}

	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: amount must be less than %s in absolute value", ErrValidation, MaxAmount)
	}

	return nil
}

// ValidateTransactionID validates a transaction primary key.
func ValidateTransactionID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be a positive integer", ErrValidation)
	}

	return nil
}
