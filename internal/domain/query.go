package domain

import "fmt"

// CategoryAll matches every category.
const CategoryAll = "all"

// DefaultMaxPrice is the price ceiling applied when none is given.
const DefaultMaxPrice Money = 1000_00

// SortKey selects the ordering of a catalog listing.
type SortKey string

// Sort keys.
const (
	SortFeatured   SortKey = "featured"
	SortPriceAsc   SortKey = "priceAsc"
	SortPriceDesc  SortKey = "priceDesc"
	SortRatingDesc SortKey = "ratingDesc"
)

// sortAliases maps accepted spellings to their canonical key. The short forms
// are the ones storefront links have historically used.
var sortAliases = map[string]SortKey{
	"":           SortFeatured,
	"featured":   SortFeatured,
	"priceAsc":   SortPriceAsc,
	"price_asc":  SortPriceAsc,
	"lowToHigh":  SortPriceAsc,
	"priceDesc":  SortPriceDesc,
	"price_desc": SortPriceDesc,
	"highToLow":  SortPriceDesc,
	"ratingDesc": SortRatingDesc,
	"rating":     SortRatingDesc,
}

// ParseSortKey resolves a sort key or one of its aliases.
func ParseSortKey(s string) (SortKey, error) {
	if k, ok := sortAliases[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// CatalogQuery describes a filtered, sorted view over the catalog.
type CatalogQuery struct {
	SearchTerm string  `json:"search_term"`
	Category   string  `json:"category"`
	MaxPrice   Money   `json:"max_price"`
	Sort       SortKey `json:"sort"`
}

// DefaultQuery returns the query that shows every product under the default
// ceiling in source order.
func DefaultQuery() CatalogQuery {
	return CatalogQuery{
		Category: CategoryAll,
		MaxPrice: DefaultMaxPrice,
		Sort:     SortFeatured,
	}
}
