package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// catalogMaxAge is how long clients may cache catalog responses.
const catalogMaxAge = time.Minute

// RouterDeps holds everything NewRouter wires into the API.
type RouterDeps struct {
	Sessions *session.Manager
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Health   *health.Handler

	// Metrics and Gatherer are optional; /metrics is mounted only when
	// Gatherer is set.
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer

	// CheckoutLimiter throttles order placement when set.
	CheckoutLimiter *middleware.RateLimiter

	CORS middleware.CORSConfig

	// PprofCIDRs enables /debug/pprof for the listed networks when non-empty.
	PprofCIDRs []string

	Logger *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler)
	}
	r.Use(middleware.Tracing())
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Session(session.ValidateID))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if len(deps.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, deps.PprofCIDRs, logger)
	}

	sessionHandler := NewSessionHandler(deps.Sessions, deps.Checkout.Pricing(), logger)
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Sessions, logger)
	checkoutHandler := NewCheckoutHandler(deps.Checkout, deps.Sessions, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Catalog endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/featured", catalogHandler.ListFeatured)
			r.Get("/categories", catalogHandler.ListCategories)
		})
		// Details carry per-session flags and are not cached.
		r.With(middleware.NoStore).Get("/products/{id}", catalogHandler.GetProduct)

		// Session endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Get("/session", sessionHandler.GetSession)

			r.Get("/cart", sessionHandler.GetCart)
			r.Delete("/cart", sessionHandler.ClearCart)
			r.Post("/cart/items", sessionHandler.AddItem)
			r.Patch("/cart/items/{productId}", sessionHandler.UpdateQuantity)
			r.Delete("/cart/items/{productId}", sessionHandler.RemoveItem)

			r.Get("/wishlist", sessionHandler.GetWishlist)
			r.Post("/wishlist/toggle", sessionHandler.ToggleWishlist)

			r.Get("/checkout/summary", checkoutHandler.GetSummary)
			if deps.CheckoutLimiter != nil {
				r.With(deps.CheckoutLimiter.Handler).Post("/checkout", checkoutHandler.PlaceOrder)
			} else {
				r.Post("/checkout", checkoutHandler.PlaceOrder)
			}
		})
	})

	return r
}
