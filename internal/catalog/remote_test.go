package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const productsJSON = `[
	{"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"Your perfect pack","category":"men's clothing","image":"https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg","rating":{"rate":3.9,"count":120}},
	{"id":2,"title":"Mens Casual T-Shirt","price":22.3,"description":"Slim-fitting style","category":"men's clothing","image":"https://fakestoreapi.com/img/71-3HjGNDUL.jpg","rating":{"rate":4.1,"count":259}}
]`

func newFakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("GET /products/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"Fjallraven Backpack","price":109.95,"category":"men's clothing","rating":{"rate":3.9,"count":120}}`))
	})
	mux.HandleFunc("GET /products/999", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /products/category/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") != "men's clothing" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(productsJSON))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient() *httpclient.CircuitBreakerClient {
	client := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      0,
		MaxConnsPerHost: 4,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("catalog-test"), logger, nil)
}

func TestRemoteSource_Products(t *testing.T) {
	server := newFakeCatalog(t)
	src := NewRemoteSource(newTestClient(), server.URL+"/")

	products, err := src.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.ProductID("1"), products[0].ID)
	assert.Equal(t, domain.Money(10995), products[0].Price)
	assert.Equal(t, domain.Money(2230), products[1].Price)
	assert.Equal(t, 259, products[1].Rating.Count)
}

func TestRemoteSource_Product(t *testing.T) {
	server := newFakeCatalog(t)
	src := NewRemoteSource(newTestClient(), server.URL)

	got, err := src.Product(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Fjallraven Backpack", got.Title)
}

func TestRemoteSource_Product_EmptyBodyIsNotFound(t *testing.T) {
	server := newFakeCatalog(t)
	src := NewRemoteSource(newTestClient(), server.URL)

	_, err := src.Product(context.Background(), "999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
}

func TestRemoteSource_Product_404IsNotFound(t *testing.T) {
	server := newFakeCatalog(t)
	src := NewRemoteSource(newTestClient(), server.URL)

	_, err := src.Product(context.Background(), "no/such")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoteSource_ProductsInCategory_EscapesName(t *testing.T) {
	server := newFakeCatalog(t)
	src := NewRemoteSource(newTestClient(), server.URL)

	products, err := src.ProductsInCategory(context.Background(), "men's clothing")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = src.ProductsInCategory(context.Background(), "garden")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRemoteSource_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	src := NewRemoteSource(newTestClient(), server.URL)

	_, err := src.Products(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeUnavailable, appErr.Code)
}

func TestRemoteSource_MalformedBodyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()
	src := NewRemoteSource(newTestClient(), server.URL)

	_, err := src.Products(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestRemoteSource_MissingEndpointIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	src := NewRemoteSource(newTestClient(), server.URL)

	_, err := src.Products(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoteSource_EmptyListIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()
	src := NewRemoteSource(newTestClient(), server.URL)

	products, err := src.Products(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}
