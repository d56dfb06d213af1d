package domain

import "time"

// RateLimitDecision is the outcome of a single limiter check.
type RateLimitDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}
