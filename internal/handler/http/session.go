package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// SessionHandler serves the cart and wishlist of the session selected by the
// X-Session-ID header.
type SessionHandler struct {
	sessions *session.Manager
	pricing  domain.Pricing
	logger   *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(sessions *session.Manager, pricing domain.Pricing, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		pricing:  pricing,
		logger:   logger,
	}
}

// --- Request DTOs ---

// QuantityRequest is the JSON body for changing a cart line's quantity.
type QuantityRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

// --- Response DTOs ---

// SessionResponse is the full state of a session.
type SessionResponse struct {
	SessionID string              `json:"session_id"`
	Cart      []domain.CartLine   `json:"cart"`
	Wishlist  []domain.Product    `json:"wishlist"`
	CartCount int                 `json:"cart_count"`
	Subtotal  domain.Money        `json:"subtotal"`
	Summary   domain.OrderSummary `json:"summary"`
	Version   uint64              `json:"version"`
}

// CartResponse is the cart of a session.
type CartResponse struct {
	Lines     []domain.CartLine   `json:"lines"`
	ItemCount int                 `json:"item_count"`
	Subtotal  domain.Money        `json:"subtotal"`
	Summary   domain.OrderSummary `json:"summary"`
	Version   uint64              `json:"version"`
}

// WishlistResponse is the wishlist of a session.
type WishlistResponse struct {
	Products []domain.Product `json:"products"`
	Version  uint64           `json:"version"`
}

// ToggleResponse reports the outcome of a wishlist toggle.
type ToggleResponse struct {
	ProductID  domain.ProductID `json:"product_id"`
	InWishlist bool             `json:"in_wishlist"`
	Products   []domain.Product `json:"products"`
	Version    uint64           `json:"version"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (h *SessionHandler) sessionView(s *session.Store) SessionResponse {
	state, version := s.SnapshotVersion()
	return SessionResponse{
		SessionID: s.ID(),
		Cart:      orEmpty(state.Cart),
		Wishlist:  orEmpty(state.Wishlist),
		CartCount: state.CartCount(),
		Subtotal:  state.CartSubtotal(),
		Summary:   domain.Summarize(state.Cart, h.pricing),
		Version:   version,
	}
}

func (h *SessionHandler) cartView(s *session.Store) CartResponse {
	state, version := s.SnapshotVersion()
	return CartResponse{
		Lines:     orEmpty(state.Cart),
		ItemCount: state.CartCount(),
		Subtotal:  state.CartSubtotal(),
		Summary:   domain.Summarize(state.Cart, h.pricing),
		Version:   version,
	}
}

func wishlistView(s *session.Store) WishlistResponse {
	state, version := s.SnapshotVersion()
	return WishlistResponse{Products: orEmpty(state.Wishlist), Version: version}
}

// store returns the session for the request.
func (h *SessionHandler) store(w http.ResponseWriter, r *http.Request) (*session.Store, bool) {
	s, err := h.sessions.Get(r.Context(), logger.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return s, true
}

// persistWarnings splits a mutation error into warnings, for a change that
// applied but was not saved, and a real failure.
func persistWarnings(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}
	var pe *session.PersistError
	if errors.As(err, &pe) {
		return []string{pe.Warning()}, nil
	}
	return nil, err
}

func (h *SessionHandler) mutated(w http.ResponseWriter, r *http.Request, err error, view any) {
	warnings, err := persistWarnings(err)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, view, warnings...)
}

// --- Handlers ---

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, h.sessionView(s))
}

// GetCart handles GET /api/v1/cart
func (h *SessionHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, h.cartView(s))
}

// AddItem handles POST /api/v1/cart/items
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := validator.DecodeAndValidate(r, &product); err != nil {
		httputil.WriteBadRequest(w, r, err)
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}
	err := s.AddToCart(r.Context(), product)
	h.mutated(w, r, err, h.cartView(s))
}

// UpdateQuantity handles PATCH /api/v1/cart/items/{productId}
func (h *SessionHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteBadRequest(w, r, err)
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}
	err := s.UpdateQuantity(r.Context(), domain.ProductID(chi.URLParam(r, "productId")), *req.Delta)
	h.mutated(w, r, err, h.cartView(s))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	err := s.RemoveFromCart(r.Context(), domain.ProductID(chi.URLParam(r, "productId")))
	h.mutated(w, r, err, h.cartView(s))
}

// ClearCart handles DELETE /api/v1/cart
func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	err := s.ClearCart(r.Context())
	h.mutated(w, r, err, h.cartView(s))
}

// GetWishlist handles GET /api/v1/wishlist
func (h *SessionHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, wishlistView(s))
}

// ToggleWishlist handles POST /api/v1/wishlist/toggle
func (h *SessionHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := validator.DecodeAndValidate(r, &product); err != nil {
		httputil.WriteBadRequest(w, r, err)
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}
	added, err := s.ToggleWishlist(r.Context(), product)
	view := wishlistView(s)
	h.mutated(w, r, err, ToggleResponse{
		ProductID:  product.ID,
		InWishlist: added,
		Products:   view.Products,
		Version:    view.Version,
	})
}
