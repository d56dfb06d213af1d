package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/spendtrack/internal/infrastructure/metrics"
)

const defaultJobTimeout = 30 * time.Second

// JobFunc is a unit of scheduled work. A returned error is logged and counted,
// never propagated to the caller of the scheduler.
type JobFunc func(ctx context.Context) error

// Scheduler runs jobs on cron expressions, isolated from the request path.
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics records job runs.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithJobTimeout bounds each job run.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a Scheduler. Panicking jobs are recovered and overlapping runs
// of the same job are skipped.
func New(logger zerolog.Logger, opts ...Option) *Scheduler {
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		logger:  logger,
		timeout: defaultJobTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add registers job under name on a standard cron spec (or descriptor such as @hourly).
func (s *Scheduler) Add(spec, name string, job JobFunc) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		return 0, fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("job scheduled")

	return id, nil
}

func (s *Scheduler) wrap(name string, job JobFunc) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		start := time.Now()
		err := job(ctx)
		elapsed := time.Since(start)

		status := "success"
		if err != nil {
			status = "error"
			s.logger.Error().Err(err).Str("job", name).Dur("duration", elapsed).Msg("scheduled job failed")
		} else {
			s.logger.Info().Str("job", name).Dur("duration", elapsed).Msg("scheduled job completed")
		}

		if s.metrics != nil {
			s.metrics.JobRuns.WithLabelValues(name, status).Inc()
			s.metrics.JobDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		}
	}
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs' contexts and waits for them to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
