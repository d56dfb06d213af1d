package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/spendtrack/internal/domain"
	"github.com/iho/spendtrack/internal/infrastructure/config"
	"github.com/iho/spendtrack/internal/infrastructure/metrics"
)

func TestListenAddr(t *testing.T) {
	if got := listenAddr(""); got != ":8080" {
		t.Fatalf("expected default :8080, got %s", got)
	}

	if got := listenAddr("3000"); got != ":3000" {
		t.Fatalf("expected :3000, got %s", got)
	}
}

func TestStartJobsDisabledOutsideProduction(t *testing.T) {
	cfg := &config.Config{AppEnv: "development", JobSchedule: "@hourly", Port: "8080"}

	s, err := startJobs(cfg, zerolog.Nop(), metrics.New(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Fatalf("expected no scheduler outside production")
	}

	// stopping a nil scheduler is a no-op
	stopJobs(s, time.Second, zerolog.Nop())
}

func TestStartJobsInProduction(t *testing.T) {
	cfg := &config.Config{AppEnv: config.ProductionEnv, JobSchedule: "@hourly", Port: "8080"}

	s, err := startJobs(cfg, zerolog.Nop(), metrics.New(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatalf("expected scheduler in production")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestStartJobsRejectsBadSchedule(t *testing.T) {
	cfg := &config.Config{AppEnv: config.ProductionEnv, JobSchedule: "every now and then", Port: "8080"}

	if _, err := startJobs(cfg, zerolog.Nop(), metrics.New(prometheus.NewRegistry())); err == nil {
		t.Fatalf("expected invalid schedule to fail startup")
	}
}

func TestStartupSchemaFailureNeverServes(t *testing.T) {
	cause := errors.New("permission denied for schema public")
	served := false

	err := startup(context.Background(),
		func(context.Context) error { return cause },
		func(context.Context) error {
			served = true
			return nil
		},
	)

	var startupErr *domain.StartupError
	if !errors.As(err, &startupErr) {
		t.Fatalf("expected *domain.StartupError, got %T (%v)", err, err)
	}
	if startupErr.Stage != "init schema" {
		t.Fatalf("expected init schema stage, got %q", startupErr.Stage)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if served {
		t.Fatalf("listener must not start when schema init fails")
	}
}

func TestStartupServesAfterSchema(t *testing.T) {
	var order []string
	serveErr := errors.New("address already in use")

	err := startup(context.Background(),
		func(context.Context) error {
			order = append(order, "schema")
			return nil
		},
		func(context.Context) error {
			order = append(order, "serve")
			return serveErr
		},
	)

	if !errors.Is(err, serveErr) {
		t.Fatalf("expected serve error to propagate, got %v", err)
	}
	if len(order) != 2 || order[0] != "schema" || order[1] != "serve" {
		t.Fatalf("unexpected startup order %v", order)
	}
}
