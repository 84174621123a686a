package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Source is a read-only product provider. Fetch failures are reported as
// apperrors.ErrServiceUnavail so callers can tell them apart from an empty
// result; an unknown id is apperrors.ErrNotFound.
type Source interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id domain.ProductID) (domain.Product, error)
	ProductsInCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// StaticSource serves a fixed product list. It backs offline use of the CLI
// (CATALOG_FILE) and tests.
type StaticSource struct {
	products []domain.Product
}

// NewStaticSource returns a source over a copy of products.
func NewStaticSource(products []domain.Product) *StaticSource {
	return &StaticSource{products: slices.Clone(products)}
}

// LoadFile reads a JSON array of products in the catalog API's format.
func LoadFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}
	return NewStaticSource(products), nil
}

func (s *StaticSource) Products(context.Context) ([]domain.Product, error) {
	return slices.Clone(s.products), nil
}

func (s *StaticSource) Product(_ context.Context, id domain.ProductID) (domain.Product, error) {
	if idx := domain.FindProduct(s.products, id); idx >= 0 {
		return s.products[idx], nil
	}
	return domain.Product{}, apperrors.NotFound("product", string(id))
}

func (s *StaticSource) ProductsInCategory(_ context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}
