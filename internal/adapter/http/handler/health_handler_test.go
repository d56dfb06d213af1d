package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okPing(context.Context) error { return nil }

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	rec := httptest.NewRecorder()

	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"status is ok"}`, rec.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	tests := []struct {
		name     string
		postgres Pinger
		redis    Pinger
		status   int
		message  string
	}{
		{"all up", PingFunc(okPing), PingFunc(okPing), http.StatusOK, "ready"},
		{"postgres down", down, PingFunc(okPing), http.StatusServiceUnavailable, "postgres unavailable"},
		{"redis down", PingFunc(okPing), down, http.StatusServiceUnavailable, "redis unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.postgres, tt.redis)
			rec := httptest.NewRecorder()

			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.message+`"}`, rec.Body.String())
		})
	}
}
