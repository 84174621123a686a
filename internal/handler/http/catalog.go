package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

// maxBrowsers bounds the per-session browsers kept for last-query-wins
// listings. When full, the map is reset.
const maxBrowsers = 4096

// CatalogHandler serves product listings, details and categories.
type CatalogHandler struct {
	catalog  *catalog.Service
	sessions *session.Manager
	logger   *slog.Logger

	mu       sync.Mutex
	browsers map[string]*catalog.Browser
}

// NewCatalogHandler creates a new catalog HTTP handler. sessions may be nil,
// in which case product details carry no cart or wishlist flags.
func NewCatalogHandler(svc *catalog.Service, sessions *session.Manager, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:  svc,
		sessions: sessions,
		logger:   logger,
		browsers: make(map[string]*catalog.Browser),
	}
}

// --- Response DTOs ---

// ListingResponse is one page of a catalog listing.
type ListingResponse struct {
	Query    domain.CatalogQuery                `json:"query"`
	Products pagination.Result[domain.Product] `json:"products"`
	Facets   []catalog.Facet                    `json:"facets"`
}

// DetailResponse is a product with its related products and, when a session
// is given, whether the shopper already holds it.
type DetailResponse struct {
	Product    domain.Product   `json:"product"`
	Related    []domain.Product `json:"related"`
	InCart     bool             `json:"in_cart"`
	InWishlist bool             `json:"in_wishlist"`
}

// CategoryResponse is a category name with its URL slug.
type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// parseQuery builds a catalog query from the search, category, max_price and
// sort parameters. Missing parameters keep their defaults.
func parseQuery(r *http.Request) (domain.CatalogQuery, error) {
	values := r.URL.Query()
	q := domain.DefaultQuery()
	q.SearchTerm = values.Get("search")

	if c := values.Get("category"); c != "" {
		q.Category = c
	}
	if v := values.Get("max_price"); v != "" {
		price, err := domain.ParseMoney(v)
		if err != nil {
			return q, fmt.Errorf("invalid max_price: %q", v)
		}
		if price < 0 {
			return q, fmt.Errorf("max_price must not be negative")
		}
		q.MaxPrice = price
	}
	sort, err := domain.ParseSortKey(values.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = sort
	return q, nil
}

// browser returns the last-query-wins browser for a session.
func (h *CatalogHandler) browser(sessionID string) *catalog.Browser {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.browsers[sessionID]; ok {
		return b
	}
	if len(h.browsers) >= maxBrowsers {
		clear(h.browsers)
	}
	b := catalog.NewBrowser(catalog.SearcherFunc(h.catalog.Browse))
	h.browsers[sessionID] = b
	return b
}

func (h *CatalogHandler) search(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	if id := logger.SessionIDFromContext(ctx); id != "" {
		return h.browser(id).Search(ctx, q)
	}
	return h.catalog.Browse(ctx, q)
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		httputil.WriteBadRequest(w, r, err)
		return
	}
	params := pagination.FromRequest(r)

	products, err := h.search(r.Context(), q)
	if errors.Is(err, catalog.ErrSuperseded) {
		httputil.WriteErrorCode(w, r, http.StatusConflict, "QUERY_SUPERSEDED",
			"a newer catalog query replaced this one")
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Facets ignore the category filter so every category stays selectable.
	unfiltered := q
	unfiltered.Category = domain.CategoryAll
	all, err := h.catalog.Search(r.Context(), unfiltered)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, ListingResponse{
		Query:    q,
		Products: pagination.Slice(products, params),
		Facets:   catalog.Facets(all),
	})
}

// ListFeatured handles GET /api/v1/products/featured
func (h *CatalogHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit := catalog.FeaturedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > pagination.MaxPerPage {
			httputil.WriteBadRequest(w, r, fmt.Errorf("limit must be between 1 and %d", pagination.MaxPerPage))
			return
		}
		limit = n
	}

	products, err := h.catalog.Featured(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, orEmpty(products))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(chi.URLParam(r, "id"))

	detail, err := h.catalog.Detail(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := DetailResponse{Product: detail.Product, Related: orEmpty(detail.Related)}
	if sid := logger.SessionIDFromContext(r.Context()); sid != "" && h.sessions != nil {
		s, err := h.sessions.Get(r.Context(), sid)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		resp.InCart = s.InCart(id)
		resp.InWishlist = s.InWishlist(id)
	}
	httputil.WriteData(w, resp)
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	out := make([]CategoryResponse, 0, len(names))
	for _, name := range names {
		out = append(out, CategoryResponse{Name: name, Slug: slug.Generate(name)})
	}
	httputil.WriteData(w, out)
}
