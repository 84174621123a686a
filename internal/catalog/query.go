// Package catalog filters and sorts product listings and fetches them from a
// catalog source.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/slug"
)

// RelatedLimit is how many related products the detail view shows.
const RelatedLimit = 4

// FeaturedLimit is the home page's featured product count.
const FeaturedLimit = 8

// Query returns the products matching q, in q.Sort order. The input slice is
// never modified. Filters, in order: case-insensitive substring of title or
// description, exact category unless "all", and price <= q.MaxPrice.
func Query(products []domain.Product, q domain.CatalogQuery) []domain.Product {
	term := strings.ToLower(q.SearchTerm)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if q.Category != "" && q.Category != domain.CategoryAll && p.Category != q.Category {
			continue
		}
		if p.Price > q.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case domain.SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) })
	case domain.SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) })
	case domain.SortRatingDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(b.Rating.Rate, a.Rating.Rate) })
	}
	return out
}

// Categories returns "all" followed by each distinct category in first-seen
// order.
func Categories(products []domain.Product) []string {
	out := []string{domain.CategoryAll}
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Facet is a category with its URL slug and how many listed products it has.
type Facet struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Facets counts products per category in first-seen order.
func Facets(products []domain.Product) []Facet {
	out := []Facet{}
	index := make(map[string]int)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(out)
			index[p.Category] = i
			out = append(out, Facet{Name: p.Category, Slug: slug.Generate(p.Category)})
		}
		out[i].Count++
	}
	return out
}

// ResolveCategory maps a category name or slug to the catalog's category
// name. An exact name wins over a slug; unknown values are returned as is so
// they match nothing.
func ResolveCategory(products []domain.Product, value string) string {
	if value == "" || value == domain.CategoryAll {
		return value
	}
	bySlug := ""
	for _, p := range products {
		if p.Category == value {
			return value
		}
		if bySlug == "" && p.Category != "" && slug.Equal(p.Category, value) {
			bySlug = p.Category
		}
	}
	if bySlug != "" {
		return bySlug
	}
	return value
}

// Related returns up to n products from candidates that share product's
// category, excluding product itself.
func Related(candidates []domain.Product, product domain.Product, n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for _, c := range candidates {
		if len(out) == n {
			break
		}
		if c.ID == product.ID || c.Category != product.Category {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Featured returns the first n products. n <= 0 yields an empty list.
func Featured(products []domain.Product, n int) []domain.Product {
	n = min(max(n, 0), len(products))
	return slices.Clone(products[:n])
}
