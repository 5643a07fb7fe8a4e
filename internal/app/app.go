package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/AdrielSA/backend-test/internal/cache"
	"github.com/AdrielSA/backend-test/internal/config"
	"github.com/AdrielSA/backend-test/internal/event"
	handler "github.com/AdrielSA/backend-test/internal/handler/http"
	"github.com/AdrielSA/backend-test/internal/repository"
	"github.com/AdrielSA/backend-test/internal/repository/memory"
	"github.com/AdrielSA/backend-test/internal/repository/postgres"
	"github.com/AdrielSA/backend-test/internal/service"
	"github.com/AdrielSA/backend-test/migrations"
	"github.com/AdrielSA/backend-test/pkg/database"
	"github.com/AdrielSA/backend-test/pkg/health"
	pkgkafka "github.com/AdrielSA/backend-test/pkg/kafka"
	"github.com/AdrielSA/backend-test/pkg/middleware"
	"github.com/AdrielSA/backend-test/pkg/tracing"
)

const (
	serviceName    = "catalog"
	serviceVersion = "0.1.0"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          redis.UniversalClient
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// Anything opened before a failure is closed again.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.closeBackends()
		}
	}()

	a.tracerShutdown, err = tracing.InitTracer(ctx, cfg.Tracing(serviceName, serviceVersion))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	healthHandler := health.NewHandler(5 * time.Second)

	movies, reviews, err := a.initStore(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}

	store, err := a.initCache(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}

	publisher := a.initEvents(reg, healthHandler)

	opts := service.Options{ReadFallback: cfg.CacheReadFallback}
	movieService := service.NewMovieService(movies, reviews, store, publisher, opts, logger)
	reviewService := service.NewReviewService(movies, reviews, store, publisher, opts, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Movies:            movieService,
		Reviews:           reviewService,
		Health:            healthHandler,
		Metrics:           middleware.NewHTTPMetrics(reg, serviceName),
		MetricsHandler:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		Logger:            logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initStore opens the configured movie and review store.
func (a *App) initStore(ctx context.Context, reg prometheus.Registerer, hh *health.Handler) (repository.MovieRepository, repository.ReviewRepository, error) {
	if a.cfg.StoreDriver == config.StoreDriverMemory {
		a.logger.Warn("using in-memory store, data is lost on restart")
		db := memory.NewStore()
		return db.Movies(), db.Reviews(), nil
	}

	pgCfg := a.cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, pgCfg, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.Int("port", pgCfg.Port),
		slog.String("database", pgCfg.DBName),
	)

	if err := database.RegisterPoolMetrics(reg, pool, serviceName); err != nil {
		return nil, nil, fmt.Errorf("register pool metrics: %w", err)
	}

	if a.cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")
	}

	database.SetSlowQueryLogging(a.cfg.SlowQueryThreshold(), a.logger)

	hh.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	return postgres.NewMovieRepository(pool), postgres.NewReviewRepository(pool), nil
}

// initCache connects to Redis and guards it with a circuit breaker.
func (a *App) initCache(ctx context.Context, reg prometheus.Registerer, hh *health.Handler) (cache.Store, error) {
	redisCfg := a.cfg.Redis()
	client, err := database.NewRedisClient(ctx, redisCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = client
	a.logger.Info("connected to Redis",
		slog.Bool("cluster", redisCfg.IsCluster()),
		slog.String("addr", redisCfg.Addr),
	)

	hh.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})

	metrics := cache.NewMetrics(reg)
	store := cache.NewRedisStore(client, a.cfg.CacheScanCount, metrics)
	return cache.NewBreakerStore(store, a.cfg.Breaker(), metrics, a.logger), nil
}

// initEvents returns the Kafka-backed publisher, or a no-op one when events
// are disabled.
func (a *App) initEvents(reg prometheus.Registerer, hh *health.Handler) service.EventPublisher {
	if !a.cfg.EventsEnabled {
		a.logger.Info("event publishing disabled")
		return event.Noop{}
	}

	a.producer = pkgkafka.NewProducer(
		pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers),
		pkgkafka.NewProducerMetrics(reg),
		a.logger,
	)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	hh.Register("kafka", a.producer.Ping)

	return event.NewProducer(a.producer, a.logger)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store", a.cfg.StoreDriver),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, Redis client, PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Flushed after the drain so spans of in-flight requests are exported.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}

	if err := a.closeBackends(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeBackends closes the producer, Redis client and pool when open.
func (a *App) closeBackends() error {
	var errs []error

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	return errors.Join(errs...)
}
