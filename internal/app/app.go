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
	"github.com/redis/go-redis/v9"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/auth"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/config"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/event"
	handler "github.com/Emirlan007/Cassini-shop-sub000/internal/handler/http"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository/postgres"
	redisrepo "github.com/Emirlan007/Cassini-shop-sub000/internal/repository/redis"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/search"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/search/elasticsearch"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	"github.com/Emirlan007/Cassini-shop-sub000/migrations"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/health"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httpclient"
	pkgkafka "github.com/Emirlan007/Cassini-shop-sub000/pkg/kafka"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/tracing"
)

// ServiceName tags logs, traces and metrics.
const ServiceName = "storefront"

// Version is overridden at build time with -ldflags.
var Version = "dev"

// App wires together all dependencies and runs the storefront server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DeadLetterQueue
	consumer       *analytics.Consumer
	emitter        analytics.Emitter
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Migrations are applied before the server accepts traffic.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(ServiceName, Version))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis
	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		a.closeAll()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	logger.Info("connected to Redis",
		slog.String("addr", cfg.Redis().Addr()),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka
	a.producer = pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories
	products := postgres.NewProductRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	carts := redisrepo.NewCartRepository(rdb, cfg.CartTTL)

	healthHandler := health.NewHandler(3 * time.Second)
	healthHandler.RegisterCritical("postgres", pool.Ping)
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", a.producer.Ping)

	var engine search.Engine
	if cfg.SearchEngine == config.SearchElasticsearch {
		es, err := elasticsearch.New(ctx, cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			// Text search falls back to the product store.
			logger.Warn("elasticsearch unavailable, using postgres search",
				slog.String("url", cfg.ElasticsearchURL),
				slog.String("error", err.Error()),
			)
		} else {
			engine = es
			healthHandler.RegisterNonCritical("elasticsearch", es.Ping)
		}
	}

	emitter := a.newEmitter()
	a.emitter = emitter
	if cfg.AnalyticsSink == analytics.SinkKafka {
		a.dlq = pkgkafka.NewDeadLetterQueue(cfg.KafkaBrokers, logger)
		store := redisrepo.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
		a.consumer = analytics.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaConsumerGroup,
		}, analyticsRepo, store, a.dlq, logger)
	}

	// Services
	eventProducer := event.NewProducer(a.producer, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)

	svc := handler.Services{
		Users:      service.NewUserService(postgres.NewUserRepository(pool), jwtManager, logger),
		Products:   service.NewProductService(products, engine, emitter, logger),
		Categories: service.NewCategoryService(postgres.NewCategoryRepository(pool), logger),
		Banners:    service.NewBannerService(postgres.NewBannerRepository(pool), logger),
		Wishlist:   service.NewWishlistService(postgres.NewWishlistRepository(pool), logger),
		Carts:      service.NewCartService(carts, products, eventProducer, emitter, logger),
		Orders: service.NewOrderService(
			postgres.NewOrderRepository(pool),
			postgres.NewHistoryRepository(pool),
			carts, eventProducer, emitter, logger,
		),
		Analytics: service.NewAnalyticsService(emitter, analyticsRepo, logger),
	}

	logger.Info("health checks registered", slog.Any("checks", healthHandler.Names()))

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins

	router := handler.NewRouter(svc, healthHandler, handler.RouterConfig{
		ValidateToken:  jwtManager.ValidateAccessToken,
		CORS:           cors,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		PprofCIDRs:     cfg.PprofCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

func (a *App) newEmitter() analytics.Emitter {
	switch a.cfg.AnalyticsSink {
	case analytics.SinkKafka:
		return analytics.NewKafkaEmitter(a.producer, a.cfg.AnalyticsEmitTimeout, a.logger)
	case analytics.SinkCollector:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("analytics-collector"),
			a.logger,
		)
		return analytics.NewCollectorEmitter(client, a.cfg.AnalyticsCollectorURL, a.cfg.AnalyticsEmitTimeout, a.logger)
	default:
		a.logger.Info("analytics disabled")
		return analytics.NopEmitter{}
	}
}

// Run starts the HTTP server and the analytics consumer, then blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	consumerDone := make(chan struct{})
	if a.consumer != nil {
		go func() {
			defer close(consumerDone)
			if err := a.consumer.Run(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("analytics consumer stopped", slog.String("error", err.Error()))
			}
		}()
	} else {
		close(consumerDone)
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		a.logger.Warn("analytics consumer did not stop in time")
	}

	// Let in-flight analytics deliveries finish before the producer closes.
	if w, ok := a.emitter.(interface{ Wait() }); ok {
		w.Wait()
	}

	a.closeAll()
	return runErr
}

// closeAll releases everything NewApp opened, in reverse dependency order.
// It tolerates a partially built App.
func (a *App) closeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("analytics consumer close error", slog.String("error", err.Error()))
		}
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("dead letter queue close error", slog.String("error", err.Error()))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	a.logger.Info("application shutdown complete")
}
