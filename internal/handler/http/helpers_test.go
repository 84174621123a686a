package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

const testSession = "shopper-1"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProduct(id string, cents int64, category string) domain.Product {
	return domain.Product{
		ID:       domain.ProductID(id),
		Title:    "Product " + id,
		Category: category,
		Price:    domain.Money(cents),
		Rating:   domain.Rating{Rate: 4, Count: 10},
	}
}

func testCatalog() []domain.Product {
	return []domain.Product{
		testProduct("1", 10995, "men's clothing"),
		testProduct("2", 16800, "jewelery"),
		testProduct("3", 10900, "electronics"),
		testProduct("4", 99999, "electronics"),
		testProduct("5", 5599, "women's clothing"),
	}
}

// failingStore loads normally but never saves.
func failingStore() *memory.Store {
	kv := memory.New()
	kv.SetFailWrites(errors.New("disk full"))
	return kv
}

type testDeps struct {
	kv        repository.KeyValueStore
	submitter checkout.Submitter
	limiter   *middleware.RateLimiter
}

func newTestRouter(t *testing.T, opts testDeps) http.Handler {
	t.Helper()
	logger := newTestLogger()
	if opts.kv == nil {
		opts.kv = memory.New()
	}
	if opts.submitter == nil {
		opts.submitter = checkout.LocalSubmitter{}
	}

	return NewRouter(RouterDeps{
		Sessions:        session.NewManager(opts.kv, logger, nil, session.Limits{}),
		Catalog:         catalog.NewService(catalog.NewStaticSource(testCatalog()), logger),
		Checkout:        checkout.NewService(opts.submitter, domain.DefaultPricing(), logger),
		Health:          health.NewHandler(),
		CheckoutLimiter: opts.limiter,
		CORS:            middleware.DefaultCORSConfig(),
		Logger:          logger,
	})
}

type envelope[T any] struct {
	Data     T                       `json:"data"`
	Warnings []string                `json:"warnings"`
	Error    *httputil.ErrorResponse `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func doRaw(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.SessionHeader, testSession)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
