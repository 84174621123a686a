package event

import (
	"context"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderSubmitter hands orders to downstream fulfilment by publishing
// order.submitted. It implements checkout.Submitter.
type OrderSubmitter struct {
	producer *Producer
}

var _ checkout.Submitter = (*OrderSubmitter)(nil)

// NewOrderSubmitter creates an OrderSubmitter.
func NewOrderSubmitter(producer *Producer) *OrderSubmitter {
	return &OrderSubmitter{producer: producer}
}

// Submit assigns an order id and publishes the order. A publish failure
// leaves the order unplaced.
func (s *OrderSubmitter) Submit(ctx context.Context, order domain.Order) (string, error) {
	orderID := checkout.NewOrderID()
	if err := s.producer.PublishOrderSubmitted(ctx, orderID, order); err != nil {
		return "", apperrors.Unavailable("ORDER_SUBMISSION_UNAVAILABLE", "orders cannot be accepted right now", err)
	}
	return orderID, nil
}
