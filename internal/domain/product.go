package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// ProductID identifies a product. Catalog sources may send numeric ids; they
// are kept as their decimal string form.
type ProductID string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// Money is an amount in minor units (cents). It is encoded in JSON as a
// decimal number with two fraction digits, matching catalog sources that send
// prices like 109.95.
type Money int64

// Cents returns the amount in minor units.
func (m Money) Cents() int64 { return int64(m) }

// Mul returns m multiplied by n.
func (m Money) Mul(n int) Money { return m * Money(n) }

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a decimal JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON decodes a decimal JSON number or numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return fmt.Errorf("money: %w", err)
		}
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

var hundred = big.NewRat(100, 1)

// ParseMoney parses a decimal amount such as "24.98", "5" or "1e3" and rounds
// it half away from zero to the nearest cent.
func ParseMoney(s string) (Money, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	r.Mul(r, hundred)

	num := new(big.Int).Set(r.Num())
	den := r.Denom()
	neg := num.Sign() < 0
	num.Abs(num)

	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Lsh(rem, 1).Cmp(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsInt64() {
		return 0, fmt.Errorf("money: amount %q out of range", s)
	}
	v := q.Int64()
	if neg {
		v = -v
	}
	return Money(v), nil
}

// MaxPrice is the highest product price accepted from clients, 10,000,000.00.
const MaxPrice Money = 1_000_000_000

// Rating is the aggregate review score reported by the catalog source.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog record. The session engine treats it as an immutable
// snapshot taken when the shopper acted on it.
type Product struct {
	ID          ProductID `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=500"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       Money     `json:"price" validate:"gte=0,max=1000000000"`
	Image       string    `json:"image,omitempty" validate:"omitempty,url"`
	Rating      Rating    `json:"rating"`
}
