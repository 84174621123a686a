package domain

// CartLine is a single product in the cart with its quantity.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total returns the line price times quantity.
func (l CartLine) Total() Money {
	return l.Product.Price.Mul(l.Quantity)
}

// SessionState is a point-in-time copy of a shopper's cart and wishlist.
type SessionState struct {
	Cart     []CartLine `json:"cart"`
	Wishlist []Product  `json:"wishlist"`
}

// CartCount returns the total number of units across all lines.
func CartCount(lines []CartLine) int {
	var count int
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

// CartSubtotal returns the sum of price times quantity across all lines.
func CartSubtotal(lines []CartLine) Money {
	var total Money
	for _, l := range lines {
		total += l.Total()
	}
	return total
}

// FindLine returns the index of the line for the given product, or -1.
func FindLine(lines []CartLine, id ProductID) int {
	for i := range lines {
		if lines[i].Product.ID == id {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the product with the given id, or -1.
func FindProduct(products []Product, id ProductID) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

// CartCount returns the number of units in the snapshot's cart.
func (s SessionState) CartCount() int { return CartCount(s.Cart) }

// CartSubtotal returns the snapshot's cart subtotal.
func (s SessionState) CartSubtotal() Money { return CartSubtotal(s.Cart) }
