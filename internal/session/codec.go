package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

// storedLine accepts both the nested {"product":{...},"quantity":n} line
// encoding and the older flattened one where product fields and quantity sit
// side by side.
type storedLine struct {
	Product  json.RawMessage `json:"product"`
	Quantity int             `json:"quantity"`
}

func encodeCart(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

func encodeWishlist(products []domain.Product) ([]byte, error) {
	if products == nil {
		products = []domain.Product{}
	}
	return json.Marshal(products)
}

// decodeCart parses a persisted cart and restores the line invariants: lines
// without an id are dropped, quantities below 1 become 1, and repeated ids
// are merged into the first occurrence.
func decodeCart(data []byte) ([]domain.CartLine, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(raw))
	for i, elem := range raw {
		var sl storedLine
		if err := json.Unmarshal(elem, &sl); err != nil {
			return nil, fmt.Errorf("decode cart line %d: %w", i, err)
		}

		var p domain.Product
		src := sl.Product
		if len(src) == 0 || bytes.Equal(src, []byte("null")) {
			src = elem
		}
		if err := json.Unmarshal(src, &p); err != nil {
			return nil, fmt.Errorf("decode cart line %d product: %w", i, err)
		}
		if p.ID == "" {
			continue
		}

		qty := max(sl.Quantity, 1)
		if idx := domain.FindLine(lines, p.ID); idx >= 0 {
			lines[idx].Quantity += qty
			continue
		}
		lines = append(lines, domain.CartLine{Product: p, Quantity: qty})
	}
	return lines, nil
}

// decodeWishlist parses a persisted wishlist, dropping entries without an id
// and later duplicates.
func decodeWishlist(data []byte) ([]domain.Product, error) {
	var raw []domain.Product
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}

	out := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		if p.ID == "" || domain.FindProduct(out, p.ID) >= 0 {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
