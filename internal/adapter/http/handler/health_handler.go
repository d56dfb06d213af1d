package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/spendtrack/internal/adapter/http/dto"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests.
type HealthHandler struct {
	postgres Pinger
	redis    Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{
		postgres: postgres,
		redis:    redis,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, dto.MessageHealthy)
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := []struct {
		name   string
		pinger Pinger
	}{
		{"postgres", h.postgres},
		{"redis", h.redis},
	}

	for _, c := range checks {
		if c.pinger == nil {
			continue
		}
		if err := c.pinger.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("dependency", c.name).Msg("readiness check failed")
			writeMessage(w, http.StatusServiceUnavailable, c.name+" unavailable")
			return
		}
	}

	writeMessage(w, http.StatusOK, "ready")
}
