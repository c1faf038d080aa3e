package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	pkgconfig "github.com/Emirlan007/Cassini-shop-sub000/pkg/config"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/tracing"
)

// Search engines selectable with SEARCH_ENGINE.
const (
	SearchPostgres      = "postgres"
	SearchElasticsearch = "elasticsearch"
)

const minJWTSecretLen = 32

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort       int           `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	CORSOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	PprofCIDRs     []string      `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// PostgreSQL
	PostgresHost       string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort       int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser       string        `env:"POSTGRES_USER" envDefault:"cassini"`
	PostgresPass       string        `env:"POSTGRES_PASSWORD" envDefault:"cassini_secret"`
	PostgresDB         string        `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSL        string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns   int32         `env:"POSTGRES_MAX_CONNS" envDefault:"20"`
	PostgresMinConns   int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	SlowQueryThreshold time.Duration `env:"POSTGRES_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Redis
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass      string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	CartTTL        time.Duration `env:"CART_TTL" envDefault:"168h"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"storefront-analytics"`

	// Auth
	JWTSecret        string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"720h"`

	// Analytics
	AnalyticsSink         string        `env:"ANALYTICS_SINK" envDefault:"kafka"`
	AnalyticsCollectorURL string        `env:"ANALYTICS_COLLECTOR_URL"`
	AnalyticsEmitTimeout  time.Duration `env:"ANALYTICS_EMIT_TIMEOUT" envDefault:"3s"`

	// Search
	SearchEngine       string `env:"SEARCH_ENGINE" envDefault:"postgres"`
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"storefront_products"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(pkgconfig.Port("HTTP_PORT", c.HTTPPort))
	add(pkgconfig.Port("POSTGRES_PORT", c.PostgresPort))
	add(pkgconfig.Port("REDIS_PORT", c.RedisPort))
	add(pkgconfig.OneOf("ANALYTICS_SINK", c.AnalyticsSink, analytics.SinkKafka, analytics.SinkCollector, analytics.SinkNone))
	add(pkgconfig.OneOf("SEARCH_ENGINE", c.SearchEngine, SearchPostgres, SearchElasticsearch))

	if !c.IsDevelopment() && len(c.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters outside development", minJWTSecretLen))
	}
	if c.AnalyticsSink == analytics.SinkCollector && c.AnalyticsCollectorURL == "" {
		errs = append(errs, errors.New("ANALYTICS_COLLECTOR_URL is required when ANALYTICS_SINK=http"))
	}
	if c.SearchEngine == SearchElasticsearch && c.ElasticsearchURL == "" {
		errs = append(errs, errors.New("ELASTICSEARCH_URL is required when SEARCH_ENGINE=elasticsearch"))
	}
	if (c.AnalyticsSink == analytics.SinkKafka || c.AnalyticsSink == analytics.SinkCollector) && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		errs = append(errs, errors.New("OTEL_SAMPLE_RATE must be between 0.0 and 1.0"))
	}
	if c.CartTTL <= 0 {
		errs = append(errs, errors.New("CART_TTL must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	return errors.Join(errs...)
}

// Postgres returns the connection settings for the pool.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.PostgresMaxConns,
		MinConns:        c.PostgresMinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Redis returns the client settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPass,
		DB:       c.RedisDB,
	}
}

// Tracing returns the exporter settings.
func (c *Config) Tracing(serviceName, version string) tracing.Config {
	return tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}
