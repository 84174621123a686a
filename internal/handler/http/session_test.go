package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func TestSessionRoutes_NoHeaderUsesDefaultSession(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", "", testProduct("1", 10995, "men's clothing"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Session-ID"))

	rec = do(t, h, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[CartResponse](t, rec)
	require.Len(t, env.Data.Lines, 1)

	rec = do(t, h, http.MethodGet, "/api/v1/cart", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode[CartResponse](t, rec)
	assert.Empty(t, env.Data.Lines)
}

func TestSessionRoutes_RejectMalformedSessionID(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/cart", "not a valid id!", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[CartResponse](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_SESSION", env.Error.Code)
}

func TestGetCart_EmptySession(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodGet, "/api/v1/cart", testSession, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, testSession, rec.Header().Get("X-Session-ID"))
	assert.Contains(t, rec.Body.String(), `"lines":[]`)

	env := decode[CartResponse](t, rec)
	assert.Zero(t, env.Data.ItemCount)
	assert.Zero(t, env.Data.Summary.Shipping)
}

func TestCart_AddUpdateRemoveFlow(t *testing.T) {
	h := newTestRouter(t, testDeps{})
	p := testProduct("1", 10995, "men's clothing")

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, p)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, p)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[CartResponse](t, rec)
	require.Len(t, env.Data.Lines, 1)
	assert.Equal(t, 2, env.Data.Lines[0].Quantity)
	assert.Equal(t, domain.Money(21990), env.Data.Subtotal)
	assert.Equal(t, uint64(2), env.Data.Version)

	rec = do(t, h, http.MethodPatch, "/api/v1/cart/items/1", testSession, map[string]int{"delta": -1})
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode[CartResponse](t, rec)
	require.Len(t, env.Data.Lines, 1)
	assert.Equal(t, 1, env.Data.Lines[0].Quantity)

	rec = do(t, h, http.MethodPatch, "/api/v1/cart/items/1", testSession, map[string]int{"delta": -1000})
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode[CartResponse](t, rec)
	require.Len(t, env.Data.Lines, 1)
	assert.Equal(t, 1, env.Data.Lines[0].Quantity)
}

func TestCart_RemoveAndClear(t *testing.T) {
	h := newTestRouter(t, testDeps{})
	do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, testProduct("1", 100, "x"))
	do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, testProduct("2", 200, "x"))

	rec := do(t, h, http.MethodDelete, "/api/v1/cart/items/1", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[CartResponse](t, rec)
	require.Len(t, env.Data.Lines, 1)
	assert.Equal(t, domain.ProductID("2"), env.Data.Lines[0].Product.ID)

	rec = do(t, h, http.MethodDelete, "/api/v1/cart", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode[CartResponse](t, rec)
	assert.Empty(t, env.Data.Lines)
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	h := newTestRouter(t, testDeps{})
	do(t, h, http.MethodPost, "/api/v1/cart/items", "alice", testProduct("1", 100, "x"))

	rec := do(t, h, http.MethodGet, "/api/v1/cart", "bob", nil)

	env := decode[CartResponse](t, rec)
	assert.Empty(t, env.Data.Lines)
}

func TestAddItem_ValidationError(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, `{"title":"No id"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[CartResponse](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "id")
}

func TestAddItem_PriceAboveCeilingRejected(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", testSession,
		`{"id":"9","title":"Yacht","price":10000000.01}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[CartResponse](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "price")

	rec = do(t, h, http.MethodGet, "/api/v1/cart", testSession, nil)
	assert.Empty(t, decode[CartResponse](t, rec).Data.Lines)
}

func TestAddItem_MalformedBody(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, `{"id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[CartResponse](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestAddItem_RejectsNonJSON(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := doRaw(t, h, http.MethodPost, "/api/v1/cart/items", "text/plain", "id=1")

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUpdateQuantity_RequiresDelta(t *testing.T) {
	h := newTestRouter(t, testDeps{})

	rec := do(t, h, http.MethodPatch, "/api/v1/cart/items/1", testSession, `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[CartResponse](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestAddItem_PersistFailureIsAWarning(t *testing.T) {
	h := newTestRouter(t, testDeps{kv: failingStore()})

	rec := do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, testProduct("1", 100, "x"))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[CartResponse](t, rec)
	assert.Equal(t, []string{"cart was updated but could not be saved"}, env.Warnings)
	require.Len(t, env.Data.Lines, 1)
}

func TestWishlist_Toggle(t *testing.T) {
	h := newTestRouter(t, testDeps{})
	p := testProduct("3", 10900, "electronics")

	rec := do(t, h, http.MethodPost, "/api/v1/wishlist/toggle", testSession, p)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[ToggleResponse](t, rec)
	assert.True(t, env.Data.InWishlist)
	assert.Equal(t, domain.ProductID("3"), env.Data.ProductID)
	require.Len(t, env.Data.Products, 1)

	rec = do(t, h, http.MethodPost, "/api/v1/wishlist/toggle", testSession, p)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode[ToggleResponse](t, rec)
	assert.False(t, env.Data.InWishlist)
	assert.Empty(t, env.Data.Products)

	rec = do(t, h, http.MethodGet, "/api/v1/wishlist", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":[]`)
}

func TestGetSession_FullView(t *testing.T) {
	h := newTestRouter(t, testDeps{})
	do(t, h, http.MethodPost, "/api/v1/cart/items", testSession, testProduct("1", 2499, "x"))
	do(t, h, http.MethodPost, "/api/v1/wishlist/toggle", testSession, testProduct("2", 500, "y"))

	rec := do(t, h, http.MethodGet, "/api/v1/session", testSession, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[SessionResponse](t, rec)
	assert.Equal(t, testSession, env.Data.SessionID)
	assert.Equal(t, 1, env.Data.CartCount)
	assert.Equal(t, domain.Money(2499), env.Data.Subtotal)
	assert.Len(t, env.Data.Wishlist, 1)
	// 24.99 + 10.00 shipping + 2.00 tax
	assert.Equal(t, domain.Money(3699), env.Data.Summary.Total)
	assert.Equal(t, uint64(2), env.Data.Version)
}
