package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// CheckoutHandler prices carts and places orders.
type CheckoutHandler struct {
	checkout *checkout.Service
	sessions *session.Manager
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *checkout.Service, sessions *session.Manager, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *CheckoutHandler) store(w http.ResponseWriter, r *http.Request) (*session.Store, bool) {
	s, err := h.sessions.Get(r.Context(), logger.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return s, true
}

// GetSummary handles GET /api/v1/checkout/summary
func (h *CheckoutHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, h.checkout.Summary(s))
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var contact domain.Contact
	if err := validator.DecodeAndValidate(r, &contact); err != nil {
		httputil.WriteBadRequest(w, r, err)
		return
	}

	s, ok := h.store(w, r)
	if !ok {
		return
	}

	receipt, err := h.checkout.PlaceOrder(r.Context(), s, contact)
	warnings, err := persistWarnings(err)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: receipt, Warnings: warnings})
}
