package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	products := []domain.Product{
		{ID: "1", Title: "Backpack", Category: "men's clothing", Price: 10995},
		{ID: "2", Title: "Ring", Category: "jewelery", Price: 16800},
	}
	data, err := json.Marshal(products)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:       "test",
		LogLevel:          "error",
		HTTPPort:          0,
		ShutdownTimeout:   5 * time.Second,
		CORSOrigins:       []string{"*"},
		StorageDriver:     repository.DriverMemory,
		CatalogFile:       writeCatalog(t),
		OrderSubmitter:    config.SubmitterLocal,
		ShippingFeeCents:  1000,
		TaxRateBPS:        800,
		CheckoutRateLimit: 10,
		CheckoutRateBurst: 10,
		OTELSampleRate:    1,
	}
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-Session-ID", "app-test")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApp_ServesAPI(t *testing.T) {
	a, err := NewApp(context.Background(), testConfig(t), newTestLogger())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	h := a.Handler()

	rec := request(t, h, http.MethodGet, "/api/v1/products?category=jewelery", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Ring"`)

	rec = request(t, h, http.MethodPost, "/api/v1/cart/items", `{"id":1,"title":"Backpack","price":109.95}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = request(t, h, http.MethodPost, "/api/v1/checkout",
		`{"full_name":"Ada","email":"ada@example.com","address":"1 Row","city":"London","postal_code":"N1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"order_id"`)

	rec = request(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage"`)

	rec = request(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_session_mutations_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewApp_MissingCatalogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := NewApp(context.Background(), cfg, newTestLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog source")
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := NewApp(context.Background(), testConfig(t), newTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	// A second shutdown is harmless.
	a.Shutdown()
}

func TestOpenStorage_Drivers(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("memory", func(t *testing.T) {
		cfg := testConfig(t)
		kv, closeFn, err := OpenStorage(ctx, cfg, logger, nil)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &memory.Store{}, kv)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.StorageDriver = repository.DriverSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "nested", "sessions.db")

		kv, closeFn, err := OpenStorage(ctx, cfg, logger, nil)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, kv.Set(ctx, "cart", []byte(`[]`)))
		got, err := kv.Get(ctx, "cart")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), got)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(t)
		cfg.StorageDriver = repository.DriverRedis
		cfg.RedisHost = mr.Host()
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)
		cfg.RedisPort = port
		cfg.SessionTTL = time.Hour

		kv, closeFn, err := OpenStorage(ctx, cfg, logger, nil)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, kv.Set(ctx, "wishlist", []byte(`[]`)))
		assert.True(t, mr.Exists("storefront:wishlist"))
		assert.Equal(t, time.Hour, mr.TTL("storefront:wishlist"))
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.StorageDriver = "cassandra"

		_, closeFn, err := OpenStorage(ctx, cfg, logger, nil)
		require.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}
