package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, order domain.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validContact() domain.Contact {
	return domain.Contact{
		FullName:   "Ada Lovelace",
		Email:      "ada@example.com",
		Address:    "12 St James's Square",
		City:       "London",
		PostalCode: "SW1Y 4JH",
	}
}

func newCart(t *testing.T, kv *memory.Store) *session.Store {
	t.Helper()
	s := session.Open(context.Background(), kv, session.Options{SessionID: "checkout-test", Logger: newTestLogger()})
	ctx := context.Background()
	require.NoError(t, s.AddToCart(ctx, domain.Product{ID: "1", Title: "Backpack", Price: 999}))
	require.NoError(t, s.AddToCart(ctx, domain.Product{ID: "1", Title: "Backpack", Price: 999}))
	require.NoError(t, s.AddToCart(ctx, domain.Product{ID: "2", Title: "Shirt", Price: 500}))
	return s
}

func TestPlaceOrder_Success(t *testing.T) {
	cart := newCart(t, memory.New())
	sub := new(mockSubmitter)
	sub.On("Submit", mock.Anything, mock.MatchedBy(func(o domain.Order) bool {
		return o.SessionID == "checkout-test" && len(o.Lines) == 2 && o.Summary.Subtotal == 2498
	})).Return("ORD-ABC123XYZ", nil)

	svc := NewService(sub, domain.DefaultPricing(), newTestLogger())
	receipt, err := svc.PlaceOrder(context.Background(), cart, validContact())
	require.NoError(t, err)

	assert.Equal(t, "ORD-ABC123XYZ", receipt.OrderID)
	assert.Equal(t, domain.Money(2498), receipt.Summary.Subtotal)
	assert.Equal(t, domain.Money(1000), receipt.Summary.Shipping)
	assert.Equal(t, domain.Money(200), receipt.Summary.Tax)
	assert.Equal(t, domain.Money(3698), receipt.Summary.Total)
	assert.Empty(t, cart.Cart())
	sub.AssertExpectations(t)
}

func TestPlaceOrder_EmptyCartRefused(t *testing.T) {
	cart := session.Open(context.Background(), memory.New(), session.Options{Logger: newTestLogger()})
	sub := new(mockSubmitter)

	svc := NewService(sub, domain.DefaultPricing(), newTestLogger())
	_, err := svc.PlaceOrder(context.Background(), cart, validContact())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestPlaceOrder_InvalidContact(t *testing.T) {
	cart := newCart(t, memory.New())
	contact := validContact()
	contact.Email = "not-an-email"
	contact.City = ""

	svc := NewService(LocalSubmitter{}, domain.DefaultPricing(), newTestLogger())
	_, err := svc.PlaceOrder(context.Background(), cart, contact)

	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "email")
	assert.Contains(t, verr.Fields(), "city")
	assert.Len(t, cart.Cart(), 2)
}

func TestPlaceOrder_RejectionLeavesCartUntouched(t *testing.T) {
	cart := newCart(t, memory.New())
	sub := new(mockSubmitter)
	sub.On("Submit", mock.Anything, mock.Anything).Return("", errors.New("card declined"))

	svc := NewService(sub, domain.DefaultPricing(), newTestLogger())
	_, err := svc.PlaceOrder(context.Background(), cart, validContact())
	assert.ErrorIs(t, err, apperrors.ErrOrderRejected)
	assert.Equal(t, 3, cart.CartCount())
}

func TestPlaceOrder_AppErrorPassesThrough(t *testing.T) {
	cart := newCart(t, memory.New())
	unavailable := apperrors.Unavailable("ORDER_SUBMISSION_UNAVAILABLE", "order service is unavailable", errors.New("broker down"))
	svc := NewService(SubmitterFunc(func(context.Context, domain.Order) (string, error) {
		return "", unavailable
	}), domain.DefaultPricing(), newTestLogger())

	_, err := svc.PlaceOrder(context.Background(), cart, validContact())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, 3, cart.CartCount())
}

func TestPlaceOrder_ClearPersistFailureIsWarning(t *testing.T) {
	kv := memory.New()
	cart := newCart(t, kv)
	kv.SetFailWrites(errors.New("disk full"))

	svc := NewService(LocalSubmitter{}, domain.DefaultPricing(), newTestLogger())
	receipt, err := svc.PlaceOrder(context.Background(), cart, validContact())

	assert.ErrorIs(t, err, session.ErrPersist)
	assert.True(t, ValidOrderID(receipt.OrderID))
	assert.Empty(t, cart.Cart())
}

func TestSummary(t *testing.T) {
	cart := newCart(t, memory.New())
	svc := NewService(LocalSubmitter{}, domain.Pricing{ShippingFee: 0, TaxRateBPS: 0}, newTestLogger())

	s := svc.Summary(cart)
	assert.Equal(t, 3, s.ItemCount)
	assert.Equal(t, domain.Money(2498), s.Total)
	assert.Equal(t, domain.Pricing{}, svc.Pricing())
}

func TestPlaceOrder_KeepsItemsAddedDuringSubmission(t *testing.T) {
	cart := newCart(t, memory.New())
	ctx := context.Background()

	svc := NewService(SubmitterFunc(func(ctx context.Context, order domain.Order) (string, error) {
		require.NoError(t, cart.AddToCart(ctx, domain.Product{ID: "3", Title: "Mug", Price: 300}))
		require.NoError(t, cart.AddToCart(ctx, domain.Product{ID: "1", Title: "Backpack", Price: 999}))
		return NewOrderID(), nil
	}), domain.DefaultPricing(), newTestLogger())

	receipt, err := svc.PlaceOrder(ctx, cart, validContact())
	require.NoError(t, err)
	assert.Equal(t, 3, receipt.Summary.ItemCount)

	lines := cart.Cart()
	require.Len(t, lines, 2)
	assert.Equal(t, domain.ProductID("1"), lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, domain.ProductID("3"), lines[1].Product.ID)
	assert.Equal(t, 1, lines[1].Quantity)
}
