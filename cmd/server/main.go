package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/spendtrack/internal/adapter/http"
	"github.com/iho/spendtrack/internal/adapter/http/handler"
	"github.com/iho/spendtrack/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/spendtrack/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/spendtrack/internal/adapter/repository/redis"
	"github.com/iho/spendtrack/internal/domain"
	"github.com/iho/spendtrack/internal/infrastructure/auth"
	"github.com/iho/spendtrack/internal/infrastructure/config"
	"github.com/iho/spendtrack/internal/infrastructure/logger"
	"github.com/iho/spendtrack/internal/infrastructure/metrics"
	"github.com/iho/spendtrack/internal/infrastructure/postgres"
	"github.com/iho/spendtrack/internal/infrastructure/redis"
	"github.com/iho/spendtrack/internal/infrastructure/scheduler"
	"github.com/iho/spendtrack/internal/usecase"
)

const keepAliveTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return &domain.StartupError{Stage: "config", Err: err}
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return &domain.StartupError{Stage: "postgres", Err: err}
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	return startup(ctx,
		func(ctx context.Context) error { return postgres.InitSchema(ctx, pool) },
		func(ctx context.Context) error { return serve(ctx, cfg, appLogger, pool) },
	)
}

// startup runs initSchema and only then serve. serve is never reached when
// the schema cannot be created, so the listener never binds.
func startup(ctx context.Context, initSchema, serve func(context.Context) error) error {
	if err := initSchema(ctx); err != nil {
		return &domain.StartupError{Stage: "init schema", Err: err}
	}
	log.Ctx(ctx).Info().Msg("database schema ready")

	return serve(ctx)
}

// serve wires the remaining dependencies and blocks until ctx is cancelled
// or the listener fails.
func serve(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger, pool *pgxpool.Pool) error {
	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return &domain.StartupError{Stage: "redis", Err: err}
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New(prometheus.DefaultRegisterer)

	jobs, err := startJobs(cfg, appLogger, m)
	if err != nil {
		return &domain.StartupError{Stage: "scheduler", Err: err}
	}

	// Initialize repositories
	retrier := postgresRepo.NewRetrier(postgresRepo.WithRetrierLogger(appLogger))
	transactionRepo := postgresRepo.NewTransactionRepository(pool,
		postgresRepo.WithRetrier(retrier),
		postgresRepo.WithMetrics(m),
	)
	limiter := redisRepo.NewSlidingWindowLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow,
		redisRepo.WithPrefix(cfg.RateLimitPrefix),
	)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient, "")

	// Initialize use cases and handlers
	transactionUC := usecase.NewTransactionUseCase(transactionRepo)
	transactionHandler := handler.NewTransactionHandler(transactionUC, m)
	healthHandler := handler.NewHealthHandler(pool, handler.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}))

	routerCfg := httpAdapter.RouterConfig{
		Logger:             appLogger,
		TransactionHandler: transactionHandler,
		HealthHandler:      healthHandler,
		RateLimiter: middleware.NewRateLimiter(limiter, handler.HandleError,
			middleware.WithFailOpen(cfg.RateLimitFailOpen),
			middleware.WithRateLimitMetrics(m),
		),
		IdempotencyStore:  idempotencyStore,
		MetricsHandler:    promhttp.Handler(),
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)
	}

	server := &http.Server{
		Addr:         listenAddr(cfg.Port),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stopJobs(jobs, cfg.HTTPShutdownTimeout, appLogger)
		return &domain.StartupError{Stage: "listen", Err: err}
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	stopJobs(jobs, cfg.HTTPShutdownTimeout, appLogger)

	appLogger.Info().Msg("server stopped")

	return nil
}

func listenAddr(port string) string {
	if port == "" {
		port = "8080"
	}

	return ":" + port
}

// startJobs schedules periodic work. Outside production it returns a nil scheduler.
func startJobs(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*scheduler.Scheduler, error) {
	if !cfg.IsProduction() {
		logger.Info().Str("env", cfg.AppEnv).Msg("scheduled jobs disabled outside production")
		return nil, nil
	}

	keepAlive := usecase.NewKeepAliveJob(cfg.ResolveKeepAliveURL(), &http.Client{Timeout: keepAliveTimeout}, logger)

	s := scheduler.New(logger, scheduler.WithMetrics(m))
	if _, err := s.Add(cfg.JobSchedule, keepAlive.Name(), keepAlive.Run); err != nil {
		return nil, err
	}

	s.Start()

	return s, nil
}

func stopJobs(s *scheduler.Scheduler, timeout time.Duration, logger zerolog.Logger) {
	if s == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		logger.Warn().Err(err).Msg("scheduled jobs did not stop in time")
	}
}
