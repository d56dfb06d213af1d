package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/spendtrack/internal/adapter/http/dto"
	"github.com/iho/spendtrack/internal/domain"
	"github.com/iho/spendtrack/internal/infrastructure/metrics"
	"github.com/iho/spendtrack/internal/usecase/mocks"
)

func errorHandlerSpy(called *error) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		*called = err
		writeMessage(w, http.StatusInternalServerError, dto.MessageInternalError)
	}
}

func TestRateLimiter_AllowsAndSetsHeaders(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Allow(gomock.Any(), "ip:10.0.0.1").
		Return(domain.RateLimitDecision{Allowed: true, Limit: 100, Remaining: 99}, nil)

	m := metrics.New(prometheus.NewRegistry())
	var handled error
	rl := NewRateLimiter(limiter, errorHandlerSpy(&handled), WithRateLimitMetrics(m))

	called := false
	req := httptest.NewRequest(http.MethodGet, "/api/transactions/u1", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()

	rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.NoError(t, handled)
	assert.Equal(t, "100", rec.Header().Get(HeaderRateLimitLimit))
	assert.Equal(t, "99", rec.Header().Get(HeaderRateLimitRemaining))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues(metrics.OutcomeAllowed)))
}

func TestRateLimiter_RejectsWith429(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).
		Return(domain.RateLimitDecision{Allowed: false, Limit: 100, Remaining: 0, RetryAfter: 1500 * time.Millisecond}, nil)

	m := metrics.New(prometheus.NewRegistry())
	var handled error
	rl := NewRateLimiter(limiter, errorHandlerSpy(&handled), WithRateLimitMetrics(m))

	rec := httptest.NewRecorder()
	rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("downstream handler must not run for a rejected request")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(HeaderRetryAfter))

	var resp dto.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Too many request, try again later.", resp.Message)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues(metrics.OutcomeRejected)))
}

func TestRateLimiter_FailClosedForwardsErrorToHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockRateLimiter(ctrl)
	limiterErr := errors.Join(domain.ErrRateLimiterUnavailable, errors.New("dial tcp: i/o timeout"))
	limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(domain.RateLimitDecision{}, limiterErr)

	var handled error
	rl := NewRateLimiter(limiter, errorHandlerSpy(&handled))

	rec := httptest.NewRecorder()
	rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("downstream handler must not run when the limiter fails closed")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.ErrorIs(t, handled, domain.ErrRateLimiterUnavailable)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimiter_FailOpenForwards(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Allow(gomock.Any(), gomock.Any()).Return(domain.RateLimitDecision{}, domain.ErrRateLimiterUnavailable)

	m := metrics.New(prometheus.NewRegistry())
	var handled error
	rl := NewRateLimiter(limiter, errorHandlerSpy(&handled), WithFailOpen(true), WithRateLimitMetrics(m))

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req = req.WithContext(logger.WithContext(req.Context()))

	called := false
	rec := httptest.NewRecorder()
	rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.NoError(t, handled)
	assert.True(t, strings.Contains(logs.String(), "rate limiter unavailable"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues(metrics.OutcomeFailOpen)))
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:8080"
	assert.Equal(t, "ip:192.168.1.7", ClientKey(req))

	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "ip:::1", ClientKey(req))

	// RealIP rewrites RemoteAddr without a port
	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "ip:203.0.113.9", ClientKey(req))

	req = req.WithContext(WithUserID(context.Background(), "u1"))
	assert.Equal(t, "user:u1", ClientKey(req))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0.001))
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 57, retryAfterSeconds(57))
	assert.Equal(t, 58, retryAfterSeconds(57.2))
}
