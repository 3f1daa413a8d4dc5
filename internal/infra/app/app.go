package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/core/port"
	"github.com/arklim/casting-agency/internal/infra/config"
	"github.com/arklim/casting-agency/internal/infra/database"
	kafkainfra "github.com/arklim/casting-agency/internal/infra/kafka"
	"github.com/arklim/casting-agency/internal/infra/logger"
	redisinfra "github.com/arklim/casting-agency/internal/infra/redis"
	"github.com/arklim/casting-agency/internal/infra/security"
	"github.com/arklim/casting-agency/internal/infra/telemetry"
	postgresrepo "github.com/arklim/casting-agency/internal/repository/postgres"
	redisrepo "github.com/arklim/casting-agency/internal/repository/redis"
	"github.com/arklim/casting-agency/internal/transport/http/middleware"
	"github.com/arklim/casting-agency/internal/transport/http/routes"
	"github.com/arklim/casting-agency/internal/usecase"
)

// Version is stamped at build time with -ldflags "-X .../app.Version=...".
var Version = "dev"

const defaultShutdownTimeout = 10 * time.Second

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	if err := a.init(ctx); err != nil {
		a.release(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *Application) init(ctx context.Context) error {
	cfg, log := a.cfg, a.logger

	if cfg.Telemetry.OTLPEndpoint != "" {
		tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, Version, log)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		a.tracer = tp
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	a.pool = pool

	if cfg.Postgres.AutoMigrate {
		if err := postgresrepo.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("database schema ensured", zap.String("schema", cfg.Postgres.Schema))
	}

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	a.redis = redisClient

	registry := prometheus.DefaultRegisterer
	if err := redisClient.RegisterPoolMetrics(registry); err != nil {
		log.Warn("redis pool metrics not registered", zap.Error(err))
	}

	metrics, err := telemetry.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: registry})
	if err != nil {
		return fmt.Errorf("init http metrics: %w", err)
	}

	keyProvider, err := security.NewKeyProvider(cfg.Auth.JWKSURL, cfg.Auth.KeyDirectory, cfg.Auth.JWKSRefresh)
	if err != nil {
		return fmt.Errorf("init key provider: %w", err)
	}

	// The local key set is only published when keys come from the development directory.
	var jwtManager *security.JWTManager
	if cfg.Auth.JWKSURL == "" {
		jwtManager = security.NewJWTManager(keyProvider)
	}

	events := a.eventPublisher(metrics)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), cfg.Redis.RateLimitPrefix, rateLimitWindow*2)
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	repos := postgresrepo.NewRepositories(pool)
	authorizer := usecase.NewAuthorizer(cfg.Auth, keyProvider, metrics, log)
	actorService := usecase.NewActorService(repos.Actors, events, metrics, log)
	movieService := usecase.NewMovieService(repos.Movies, repos.Actors, repos.Castings, events, metrics, log)

	a.engine = routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Authorizer:  authorizer,
		RateLimiter: rateLimiter,
		HTTPMetrics: httpMetrics,
		JWTManager:  jwtManager,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Actors: actorService,
			Movies: movieService,
		},
	})

	return nil
}

// eventPublisher returns the Kafka publisher, or the logging stub when Kafka is unset or unreachable.
func (a *Application) eventPublisher(metrics *telemetry.Metrics) port.EventPublisher {
	if len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(a.cfg.Kafka, metrics, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}

	a.producer = producer
	return kafkainfra.NewEventPublisher(producer, a.cfg.App, a.logger)
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting casting agency API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("version", Version),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	timeout := a.cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received", zap.Duration("timeout", timeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		a.release(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		a.release(context.Background())
		return err
	}
}

// release closes every resource acquired by New, in reverse order.
func (a *Application) release(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown tracer provider", zap.Error(err))
		}
	}
}
