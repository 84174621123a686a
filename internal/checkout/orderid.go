package checkout

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	orderIDPrefix = "ORD-"
	orderIDLength = 9
)

// NewOrderID returns an id of the form ORD-XXXXXXXXX where X is an uppercase
// base-36 digit drawn from a random UUID.
func NewOrderID() string {
	u := uuid.New()
	digits := strings.ToUpper(new(big.Int).SetBytes(u[:]).Text(36))
	if len(digits) < orderIDLength {
		digits = strings.Repeat("0", orderIDLength-len(digits)) + digits
	}
	return orderIDPrefix + digits[len(digits)-orderIDLength:]
}

// ValidOrderID reports whether id has the NewOrderID format.
func ValidOrderID(id string) bool {
	rest, ok := strings.CutPrefix(id, orderIDPrefix)
	if !ok || len(rest) != orderIDLength {
		return false
	}
	for _, r := range rest {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
