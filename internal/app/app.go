package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const defaultShutdownTimeout = 15 * time.Second

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	registry       *prometheus.Registry
	sessions       *session.Manager
	limiter        *middleware.RateLimiter
	producers      []*pkgkafka.Producer
	closeStorage   func()
	shutdownTracer func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(initCtx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		cfg:            cfg,
		logger:         logger,
		registry:       reg,
		shutdownTracer: shutdownTracer,
		closeStorage:   func() {},
	}

	// Session storage.
	kv, closeStorage, err := OpenStorage(initCtx, cfg, logger, reg)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.closeStorage = closeStorage
	a.sessions = session.NewManager(kv, logger, session.NewMetrics(reg), cfg.SessionLimits())

	// Catalog.
	source, err := NewCatalogSource(cfg, logger, reg)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("catalog source: %w", err)
	}
	catalogService := catalog.NewService(source, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("storage", a.sessions.Ping)
	healthHandler.RegisterNonCritical("catalog", catalogService.Ping)

	// Events and order submission.
	var submitter checkout.Submitter = checkout.LocalSubmitter{}
	if cfg.KafkaEnabled {
		metrics := pkgkafka.NewProducerMetrics(reg)

		// Session observers run under the store lock, so session events
		// are queued rather than awaited.
		asyncCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		asyncCfg.Async = true
		sessionProducer := pkgkafka.NewProducer(asyncCfg, logger, metrics)
		a.producers = append(a.producers, sessionProducer)
		a.sessions.Subscribe(event.NewProducer(sessionProducer, logger).SessionObserver())
		healthHandler.RegisterNonCritical("kafka", sessionProducer.Ping)

		if cfg.OrderSubmitter == config.SubmitterKafka {
			orderProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger, metrics)
			a.producers = append(a.producers, orderProducer)
			submitter = event.NewOrderSubmitter(event.NewProducer(orderProducer, logger))
		}
		logger.Info("kafka producers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("order_submitter", cfg.OrderSubmitter),
		)
	}
	checkoutService := checkout.NewService(submitter, cfg.Pricing(), logger)

	a.limiter = middleware.NewRateLimiter(cfg.CheckoutRateLimit, cfg.CheckoutRateBurst, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins

	var pprofCIDRs []string
	if cfg.PprofEnabled {
		pprofCIDRs = cfg.PprofAllowedCIDRs
	}

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Sessions:        a.sessions,
		Catalog:         catalogService,
		Checkout:        checkoutService,
		Health:          healthHandler,
		Metrics:         middleware.NewHTTPMetrics(reg, config.ServiceName),
		Gatherer:        reg,
		CheckoutLimiter: a.limiter,
		CORS:            cors,
		PprofCIDRs:      pprofCIDRs,
		Logger:          logger,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.Shutdown()
		return err
	}

	a.Shutdown()
	return nil
}

// Shutdown gracefully stops all components. It is safe to call on a
// partially initialized App.
func (a *App) Shutdown() {
	a.logger.Info("shutting down application...")

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		}
	}

	if a.limiter != nil {
		a.limiter.Close()
		a.limiter = nil
	}

	// Producers flush after the server stops accepting mutations.
	for _, p := range a.producers {
		if err := p.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	a.producers = nil

	a.closeStorage()
	a.closeStorage = func() {}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.shutdownTracer = nil
	}

	a.logger.Info("application shutdown complete")
}
