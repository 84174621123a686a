package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	pgrepo "github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	sqliterepo "github.com/utafrali/storefront/internal/repository/sqlite"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// OpenStorage connects the session key-value store selected by
// cfg.StorageDriver. The returned close function releases the connection and
// is never nil. reg may be nil.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (repository.KeyValueStore, func(), error) {
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	noop := func() {}

	switch cfg.StorageDriver {
	case repository.DriverMemory:
		logger.Warn("using in-memory session storage; sessions are lost on restart")
		return memory.New(), noop, nil

	case repository.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		store, err := sqliterepo.NewStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		logger.Info("opened SQLite session storage", slog.String("path", cfg.SQLitePath))
		return store, func() {
			if err := db.Close(); err != nil {
				logger.Error("sqlite close error", slog.String("error", err.Error()))
			}
		}, nil

	case repository.DriverRedis:
		rc := cfg.Redis()
		client, err := database.NewRedisClient(ctx, rc, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", rc.Addr()),
			slog.Int("db", rc.DB),
			slog.Duration("session_ttl", cfg.SessionTTL),
		)
		return redisrepo.NewStore(client, cfg.SessionTTL), func() {
			if err := client.Close(); err != nil {
				logger.Error("redis close error", slog.String("error", err.Error()))
			}
		}, nil

	case repository.DriverPostgres:
		pg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pg, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pgrepo.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("migrate postgres: %w", err)
		}
		if reg != nil {
			if err := database.RegisterPoolMetrics(reg, pool, config.ServiceName); err != nil {
				logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
			}
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", pg.Host),
			slog.String("database", pg.DBName),
		)
		return pgrepo.NewStore(pool), pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewCatalogSource returns the local catalog file when one is configured and
// the remote catalog API behind a circuit breaker otherwise. reg may be nil.
func NewCatalogSource(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (catalog.Source, error) {
	if cfg.CatalogFile != "" {
		src, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		logger.Info("using local catalog file", slog.String("path", cfg.CatalogFile))
		return src, nil
	}

	var metrics *httpclient.BreakerMetrics
	if reg != nil {
		metrics = httpclient.NewBreakerMetrics(reg)
	}
	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg.CatalogClient()),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
		metrics,
	)
	logger.Info("using remote catalog", slog.String("base_url", cfg.CatalogBaseURL))
	return catalog.NewRemoteSource(client, cfg.CatalogBaseURL), nil
}
