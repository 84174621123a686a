package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func line(id string, price Money, qty int) CartLine {
	return CartLine{Product: Product{ID: ProductID(id), Price: price}, Quantity: qty}
}

func TestCartSubtotal(t *testing.T) {
	lines := []CartLine{line("1", 999, 2), line("2", 500, 1)}
	assert.Equal(t, Money(2498), CartSubtotal(lines))
	assert.Equal(t, "24.98", CartSubtotal(lines).String())
}

func TestCartSubtotal_Empty(t *testing.T) {
	assert.Equal(t, Money(0), CartSubtotal(nil))
}

func TestCartCount(t *testing.T) {
	lines := []CartLine{line("1", 100, 2), line("2", 100, 3)}
	assert.Equal(t, 5, CartCount(lines))
	assert.Equal(t, 0, CartCount(nil))
}

func TestFindLine(t *testing.T) {
	lines := []CartLine{line("a", 1, 1), line("b", 1, 1)}
	assert.Equal(t, 1, FindLine(lines, "b"))
	assert.Equal(t, -1, FindLine(lines, "c"))
}

func TestFindProduct(t *testing.T) {
	products := []Product{{ID: "x"}, {ID: "y"}}
	assert.Equal(t, 0, FindProduct(products, "x"))
	assert.Equal(t, -1, FindProduct(products, "z"))
}

func TestSessionState_Aggregates(t *testing.T) {
	s := SessionState{Cart: []CartLine{line("1", 250, 4)}}
	assert.Equal(t, 4, s.CartCount())
	assert.Equal(t, Money(1000), s.CartSubtotal())
}
