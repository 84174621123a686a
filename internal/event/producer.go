package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront events.
const (
	TopicCartUpdated     = "ecommerce.storefront.cart.updated"
	TopicWishlistUpdated = "ecommerce.storefront.wishlist.updated"
	TopicOrderSubmitted  = "ecommerce.storefront.order.submitted"
)

// Aggregate types.
const (
	AggregateTypeSession = "session"
	AggregateTypeOrder   = "order"
)

// SourceStorefront identifies events originating from this module.
const SourceStorefront = "storefront"

// defaultSessionAggregate names the unnamed default session in events.
const defaultSessionAggregate = "default"

// Publisher sends an event to a topic; *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// LineData is a cart line in event payloads. Amounts are in cents.
type LineData struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartUpdatedData is the payload for cart.updated.
type CartUpdatedData struct {
	SessionID string     `json:"session_id"`
	Change    string     `json:"change"`
	ProductID string     `json:"product_id,omitempty"`
	Version   uint64     `json:"version"`
	Lines     []LineData `json:"lines"`
	ItemCount int        `json:"item_count"`
	Subtotal  int64      `json:"subtotal"`
}

// WishlistUpdatedData is the payload for wishlist.updated.
type WishlistUpdatedData struct {
	SessionID  string   `json:"session_id"`
	Change     string   `json:"change"`
	ProductID  string   `json:"product_id"`
	Version    uint64   `json:"version"`
	ProductIDs []string `json:"product_ids"`
}

// OrderSubmittedData is the payload for order.submitted.
type OrderSubmittedData struct {
	OrderID   string         `json:"order_id"`
	SessionID string         `json:"session_id"`
	Lines     []LineData     `json:"lines"`
	ItemCount int            `json:"item_count"`
	Subtotal  int64          `json:"subtotal"`
	Shipping  int64          `json:"shipping"`
	Tax       int64          `json:"tax"`
	Total     int64          `json:"total"`
	Contact   domain.Contact `json:"contact"`
}

// Producer publishes storefront domain events.
type Producer struct {
	pub    Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		pub:    pub,
		logger: logger,
	}
}

func aggregateID(sessionID string) string {
	if sessionID == "" {
		return defaultSessionAggregate
	}
	return sessionID
}

func lineData(lines []domain.CartLine) []LineData {
	out := make([]LineData, len(lines))
	for i, l := range lines {
		out[i] = LineData{
			ProductID: string(l.Product.ID),
			Title:     l.Product.Title,
			Price:     l.Product.Price.Cents(),
			Quantity:  l.Quantity,
		}
	}
	return out
}

func (p *Producer) publish(ctx context.Context, topic, aggID, aggType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggID, aggType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if err := p.pub.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishSessionChange publishes cart.updated or wishlist.updated for c.
func (p *Producer) PublishSessionChange(ctx context.Context, c session.Change) error {
	aggID := aggregateID(c.SessionID)

	switch c.Kind {
	case session.ChangeWishlistAdd, session.ChangeWishlistRemove:
		ids := make([]string, len(c.State.Wishlist))
		for i, prod := range c.State.Wishlist {
			ids[i] = string(prod.ID)
		}
		return p.publish(ctx, TopicWishlistUpdated, aggID, AggregateTypeSession, WishlistUpdatedData{
			SessionID:  aggID,
			Change:     string(c.Kind),
			ProductID:  string(c.ProductID),
			Version:    c.Version,
			ProductIDs: ids,
		})
	}

	return p.publish(ctx, TopicCartUpdated, aggID, AggregateTypeSession, CartUpdatedData{
		SessionID: aggID,
		Change:    string(c.Kind),
		ProductID: string(c.ProductID),
		Version:   c.Version,
		Lines:     lineData(c.State.Cart),
		ItemCount: c.State.CartCount(),
		Subtotal:  c.State.CartSubtotal().Cents(),
	})
}

// SessionObserver returns a session.Observer that publishes every change.
// Publish failures are logged; they never affect the session.
func (p *Producer) SessionObserver() session.Observer {
	return func(ctx context.Context, c session.Change) {
		if err := p.PublishSessionChange(ctx, c); err != nil {
			p.logger.WarnContext(ctx, "failed to publish session change",
				slog.String("session_id", aggregateID(c.SessionID)),
				slog.String("change", string(c.Kind)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// PublishOrderSubmitted publishes order.submitted.
func (p *Producer) PublishOrderSubmitted(ctx context.Context, orderID string, order domain.Order) error {
	err := p.publish(ctx, TopicOrderSubmitted, orderID, AggregateTypeOrder, OrderSubmittedData{
		OrderID:   orderID,
		SessionID: aggregateID(order.SessionID),
		Lines:     lineData(order.Lines),
		ItemCount: order.Summary.ItemCount,
		Subtotal:  order.Summary.Subtotal.Cents(),
		Shipping:  order.Summary.Shipping.Cents(),
		Tax:       order.Summary.Tax.Cents(),
		Total:     order.Summary.Total.Cents(),
		Contact:   order.Contact,
	})
	if err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published order.submitted event",
		slog.String("order_id", orderID),
		slog.Int("item_count", order.Summary.ItemCount),
	)
	return nil
}
