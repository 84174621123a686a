// Package checkout prices a session's cart and hands it to an order
// submitter.
package checkout

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// Submitter accepts an order and returns its id. An *apperrors.AppError is
// passed through to the caller; any other error is treated as a rejection.
type Submitter interface {
	Submit(ctx context.Context, order domain.Order) (orderID string, err error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, order domain.Order) (string, error)

func (f SubmitterFunc) Submit(ctx context.Context, order domain.Order) (string, error) {
	return f(ctx, order)
}

// LocalSubmitter accepts every order without contacting anything.
type LocalSubmitter struct{}

func (LocalSubmitter) Submit(context.Context, domain.Order) (string, error) {
	return NewOrderID(), nil
}

// Cart is the part of a session store checkout needs; *session.Store
// satisfies it.
type Cart interface {
	ID() string
	Cart() []domain.CartLine
	RemoveOrdered(ctx context.Context, ordered []domain.CartLine) error
}

// Service places orders.
type Service struct {
	submitter Submitter
	pricing   domain.Pricing
	logger    *slog.Logger
}

// NewService creates a checkout service.
func NewService(submitter Submitter, pricing domain.Pricing, logger *slog.Logger) *Service {
	return &Service{
		submitter: submitter,
		pricing:   pricing,
		logger:    logger.With(slog.String("component", "checkout")),
	}
}

// Pricing returns the charges applied at checkout.
func (s *Service) Pricing() domain.Pricing { return s.pricing }

// Summary prices the cart's current lines.
func (s *Service) Summary(cart Cart) domain.OrderSummary {
	return domain.Summarize(cart.Cart(), s.pricing)
}

// PlaceOrder submits the cart and, on success, removes the ordered lines.
// Items added while the order was being submitted stay in the cart.
//
// When the order was accepted but the updated cart could not be saved, the
// receipt is returned together with the session's persist error; callers
// should treat that as a warning.
func (s *Service) PlaceOrder(ctx context.Context, cart Cart, contact domain.Contact) (domain.Receipt, error) {
	if err := validator.Validate(contact); err != nil {
		return domain.Receipt{}, err
	}

	lines := cart.Cart()
	if len(lines) == 0 {
		return domain.Receipt{}, apperrors.InvalidInput("cart is empty")
	}

	order := domain.Order{
		SessionID: cart.ID(),
		Lines:     lines,
		Summary:   domain.Summarize(lines, s.pricing),
		Contact:   contact,
	}

	orderID, err := s.submitter.Submit(ctx, order)
	if err != nil {
		s.logger.WarnContext(ctx, "order submission failed",
			slog.String("session_id", order.SessionID),
			slog.String("error", err.Error()),
		)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return domain.Receipt{}, err
		}
		return domain.Receipt{}, apperrors.OrderRejected("order could not be placed")
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", orderID),
		slog.String("session_id", order.SessionID),
		slog.Int("item_count", order.Summary.ItemCount),
		slog.String("total", order.Summary.Total.String()),
	)

	receipt := domain.Receipt{OrderID: orderID, Summary: order.Summary}
	if err := cart.RemoveOrdered(ctx, order.Lines); err != nil {
		return receipt, err
	}
	return receipt, nil
}
