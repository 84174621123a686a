package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func productIDs(products []domain.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, string(p.ID))
	}
	return ids
}

func TestListProducts_Defaults(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/products", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	env := decode[ListingResponse](t, rec)
	assert.Equal(t, domain.DefaultQuery(), env.Data.Query)
	// Product 4 costs 999.99 and sits under the 1000.00 default ceiling.
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, productIDs(env.Data.Products.Data))
	assert.Equal(t, 5, env.Data.Products.TotalCount)
	assert.Len(t, env.Data.Facets, 4)
}

func TestListProducts_FilterSortAndPaginate(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet,
		"/api/v1/products?category=electronics&sort=lowToHigh&per_page=1&page=2", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[ListingResponse](t, rec)
	assert.Equal(t, domain.SortPriceAsc, env.Data.Query.Sort)
	assert.Equal(t, []string{"4"}, productIDs(env.Data.Products.Data))
	assert.Equal(t, 2, env.Data.Products.TotalCount)
	assert.Equal(t, 2, env.Data.Products.TotalPages)
	assert.False(t, env.Data.Products.HasNext)
	assert.True(t, env.Data.Products.HasPrev)
}

func TestListProducts_CategorySlug(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/products?category=mens-clothing", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[ListingResponse](t, rec)
	assert.Equal(t, []string{"1"}, productIDs(env.Data.Products.Data))
	// Facets ignore the category filter.
	assert.Len(t, env.Data.Facets, 4)
}

func TestListProducts_MaxPriceAndSearch(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/products?max_price=110&search=product", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[ListingResponse](t, rec)
	assert.Equal(t, domain.Money(11000), env.Data.Query.MaxPrice)
	assert.Equal(t, []string{"1", "3", "5"}, productIDs(env.Data.Products.Data))
}

func TestListProducts_WithSessionUsesBrowser(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/products?category=jewelery", testSession, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[ListingResponse](t, rec)
	assert.Equal(t, []string{"2"}, productIDs(env.Data.Products.Data))
}

func TestListProducts_InvalidParams(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	tests := []struct {
		name  string
		query string
	}{
		{name: "unknown sort", query: "sort=cheapest"},
		{name: "malformed max price", query: "max_price=abc"},
		{name: "negative max price", query: "max_price=-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/v1/products?"+tt.query, "", nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decode[ListingResponse](t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, "INVALID_INPUT", env.Error.Code)
		})
	}
}

func TestListFeatured(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/products/featured?limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[[]domain.Product](t, rec)
	assert.Equal(t, []string{"1", "2"}, productIDs(env.Data))

	rec = do(t, h, http.MethodGet, "/api/v1/products/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode[[]domain.Product](t, rec)
	assert.Len(t, env.Data, 5)

	rec = do(t, h, http.MethodGet, "/api/v1/products/featured?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/products/3", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	env := decode[DetailResponse](t, rec)
	assert.Equal(t, domain.ProductID("3"), env.Data.Product.ID)
	assert.Equal(t, []string{"4"}, productIDs(env.Data.Related))
	assert.False(t, env.Data.InCart)
	assert.False(t, env.Data.InWishlist)
}

func TestGetProduct_SessionFlags(t *testing.T) {
	h := newTestRouter(t, testDeps{})
	p := testProduct("3", 10900, "electronics")
	do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, p)

	rec := do(t, h, http.MethodGet, "/api/v1/products/3", testSession, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[DetailResponse](t, rec)
	assert.True(t, env.Data.InCart)
	assert.False(t, env.Data.InWishlist)
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/products/999", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[DetailResponse](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestListCategories(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/categories", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[[]CategoryResponse](t, rec)
	assert.Equal(t, []CategoryResponse{
		{Name: "all", Slug: "all"},
		{Name: "men's clothing", Slug: "mens-clothing"},
		{Name: "jewelery", Slug: "jewelery"},
		{Name: "electronics", Slug: "electronics"},
		{Name: "women's clothing", Slug: "womens-clothing"},
	}, env.Data)
}
