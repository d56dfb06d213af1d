package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/spendtrack/internal/adapter/http/dto"
	"github.com/iho/spendtrack/internal/infrastructure/metrics"
	"github.com/iho/spendtrack/internal/usecase"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

// RateLimiter gates every request through a shared limiter before any
// handler runs.
type RateLimiter struct {
	limiter  usecase.RateLimiter
	onError  ErrorHandler
	failOpen bool
	metrics  *metrics.Metrics
}

// RateLimitOption configures a RateLimiter.
type RateLimitOption func(*RateLimiter)

// WithFailOpen forwards requests when the limiter itself fails.
// The default rejects them through the error handler.
func WithFailOpen(failOpen bool) RateLimitOption {
	return func(rl *RateLimiter) { rl.failOpen = failOpen }
}

// WithRateLimitMetrics counts decisions by outcome.
func WithRateLimitMetrics(m *metrics.Metrics) RateLimitOption {
	return func(rl *RateLimiter) { rl.metrics = m }
}

// NewRateLimiter creates a new rate limiting middleware.
func NewRateLimiter(limiter usecase.RateLimiter, onError ErrorHandler, opts ...RateLimitOption) *RateLimiter {
	rl := &RateLimiter{
		limiter: limiter,
		onError: onError,
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Limit is a middleware that enforces the request quota per client.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := rl.limiter.Allow(r.Context(), ClientKey(r))
		if err != nil {
			if rl.failOpen {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				rl.record(metrics.OutcomeFailOpen)
				next.ServeHTTP(w, r)
				return
			}

			rl.record(metrics.OutcomeError)
			rl.onError(w, r, err)
			return
		}

		w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			rl.record(metrics.OutcomeRejected)
			w.Header().Set(HeaderRetryAfter, strconv.Itoa(retryAfterSeconds(decision.RetryAfter.Seconds())))
			writeMessage(w, http.StatusTooManyRequests, dto.MessageTooManyRequests)
			return
		}

		rl.record(metrics.OutcomeAllowed)
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) record(outcome string) {
	if rl.metrics != nil {
		rl.metrics.RateLimitDecisions.WithLabelValues(outcome).Inc()
	}
}

// ClientKey identifies the caller: the authenticated user when known,
// otherwise the peer address. Forwarding headers are only honored when the
// router mounts chi's RealIP, which rewrites RemoteAddr.
func ClientKey(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return "ip:" + host
}

func retryAfterSeconds(s float64) int {
	return max(int(math.Ceil(s)), 1)
}
