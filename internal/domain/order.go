package domain

// Pricing holds the checkout charges applied on top of the cart subtotal.
type Pricing struct {
	ShippingFee Money
	// TaxRateBPS is the tax rate in basis points (800 = 8%).
	TaxRateBPS int64
}

// DefaultPricing returns a flat 10.00 shipping fee and 8% tax.
func DefaultPricing() Pricing {
	return Pricing{ShippingFee: 10_00, TaxRateBPS: 800}
}

// OrderSummary is the priced breakdown of a cart.
type OrderSummary struct {
	ItemCount int   `json:"item_count"`
	Subtotal  Money `json:"subtotal"`
	Shipping  Money `json:"shipping"`
	Tax       Money `json:"tax"`
	Total     Money `json:"total"`
}

// Summarize prices the given lines. Shipping is only charged on a non-empty
// cart; tax is rounded half up to the cent.
func Summarize(lines []CartLine, p Pricing) OrderSummary {
	subtotal := CartSubtotal(lines)

	var shipping Money
	if len(lines) > 0 {
		shipping = p.ShippingFee
	}

	tax := applyRate(subtotal, p.TaxRateBPS)

	return OrderSummary{
		ItemCount: CartCount(lines),
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal + shipping + tax,
	}
}

// applyRate returns amount × bps / 10000 rounded half up. The whole and
// fractional ten-thousandths are scaled separately so large amounts do not
// overflow.
func applyRate(amount Money, bps int64) Money {
	whole, frac := int64(amount)/10000, int64(amount)%10000
	return Money(whole*bps + (frac*bps+5000)/10000)
}

// Contact is the shipping contact captured at checkout.
type Contact struct {
	FullName   string `json:"full_name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
}

// Order is what the submission boundary receives.
type Order struct {
	SessionID string       `json:"session_id,omitempty"`
	Lines     []CartLine   `json:"lines"`
	Summary   OrderSummary `json:"summary"`
	Contact   Contact      `json:"contact"`
}

// Receipt is returned to the shopper after a successful submission.
type Receipt struct {
	OrderID string       `json:"order_id"`
	Summary OrderSummary `json:"summary"`
}
