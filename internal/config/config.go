package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/session"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "storefront"

// Order submitters.
const (
	SubmitterLocal = "local"
	SubmitterKafka = "kafka"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Session storage
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SessionsMax   int           `env:"SESSION_MAX_OPEN" envDefault:"10000"`
	SessionIdle   time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"data/storefront.db"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`

	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Catalog source. CatalogFile, when set, replaces the remote API with a
	// local JSON file.
	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"https://fakestoreapi.com"`
	CatalogFile    string        `env:"CATALOG_FILE" envDefault:""`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	CatalogRetries int           `env:"CATALOG_MAX_RETRIES" envDefault:"2"`

	// Kafka
	KafkaEnabled   bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers   []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	OrderSubmitter string   `env:"ORDER_SUBMITTER" envDefault:"local"`

	// Checkout
	ShippingFeeCents  int64   `env:"CHECKOUT_SHIPPING_FEE_CENTS" envDefault:"1000"`
	TaxRateBPS        int64   `env:"CHECKOUT_TAX_RATE_BPS" envDefault:"800"`
	CheckoutRateLimit float64 `env:"CHECKOUT_RATE_LIMIT_RPS" envDefault:"1"`
	CheckoutRateBurst int     `env:"CHECKOUT_RATE_LIMIT_BURST" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Profiling
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithDotenv(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var drivers = []string{
	repository.DriverMemory,
	repository.DriverSQLite,
	repository.DriverRedis,
	repository.DriverPostgres,
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains(drivers, c.StorageDriver) {
		return fmt.Errorf("STORAGE_DRIVER must be one of %v, got %q", drivers, c.StorageDriver)
	}
	if c.StorageDriver == repository.DriverSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	if c.SessionsMax < 1 {
		return fmt.Errorf("SESSION_MAX_OPEN must be at least 1")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.TaxRateBPS < 0 || c.TaxRateBPS > 10000 {
		return fmt.Errorf("CHECKOUT_TAX_RATE_BPS must be between 0 and 10000, got %d", c.TaxRateBPS)
	}
	if c.ShippingFeeCents < 0 {
		return fmt.Errorf("CHECKOUT_SHIPPING_FEE_CENTS must not be negative")
	}
	if c.CheckoutRateLimit <= 0 || c.CheckoutRateBurst < 1 {
		return fmt.Errorf("checkout rate limit must be positive with a burst of at least 1")
	}
	if c.CatalogRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must not be negative")
	}
	switch c.OrderSubmitter {
	case SubmitterLocal:
	case SubmitterKafka:
		if !c.KafkaEnabled {
			return fmt.Errorf("ORDER_SUBMITTER=kafka requires KAFKA_ENABLED=true")
		}
	default:
		return fmt.Errorf("ORDER_SUBMITTER must be %q or %q, got %q", SubmitterLocal, SubmitterKafka, c.OrderSubmitter)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when Kafka is enabled")
	}
	return nil
}

// Pricing returns the checkout charges.
func (c *Config) Pricing() domain.Pricing {
	return domain.Pricing{
		ShippingFee: domain.Money(c.ShippingFeeCents),
		TaxRateBPS:  c.TaxRateBPS,
	}
}

// SessionLimits bounds the sessions held in memory.
func (c *Config) SessionLimits() session.Limits {
	return session.Limits{MaxOpen: c.SessionsMax, IdleTimeout: c.SessionIdle}
}

// Postgres returns the connection settings for the postgres driver.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	pg.MaxConns = c.PostgresMaxConns
	return pg
}

// Redis returns the connection settings for the redis driver.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// CatalogClient returns the HTTP client settings for the catalog API.
func (c *Config) CatalogClient() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.CatalogTimeout
	hc.MaxRetries = c.CatalogRetries
	return hc
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig(ServiceName)
	tc.Environment = c.Environment
	tc.Enabled = c.OTELEnabled
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.Insecure = c.OTELInsecure
	tc.SampleRate = c.OTELSampleRate
	return tc
}
