package catalog

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Detail is a product together with products from its category.
type Detail struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"related"`
}

// Service fronts a Source, coalescing concurrent identical fetches.
type Service struct {
	source Source
	logger *slog.Logger
	group  singleflight.Group
}

// NewService creates a catalog service over source.
func NewService(source Source, logger *slog.Logger) *Service {
	return &Service{
		source: source,
		logger: logger.With(slog.String("component", "catalog")),
	}
}

// shared runs fn once per key among concurrent callers. The fetch itself is
// detached from any single caller's cancellation; each caller still returns
// as soon as its own ctx is done.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Products returns the full catalog in source order.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	v, err := s.shared(ctx, "products", func(ctx context.Context) (any, error) {
		return s.source.Products(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]domain.Product)), nil
}

// Search fetches the catalog and applies q.
func (s *Service) Search(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Query(products, q), nil
}

// Browse is Search with the category given by name or slug.
func (s *Service) Browse(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	q.Category = ResolveCategory(products, q.Category)
	return Query(products, q), nil
}

// Categories returns "all" plus the catalog's categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Categories(products), nil
}

// Featured returns the first n catalog products.
func (s *Service) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Featured(products, n), nil
}

// Product returns a single product by id.
func (s *Service) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, apperrors.InvalidInput("product id is required")
	}
	v, err := s.shared(ctx, "product:"+string(id), func(ctx context.Context) (any, error) {
		return s.source.Product(ctx, id)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}

// Detail returns the product and up to RelatedLimit related products. A
// failed related fetch degrades to an empty list.
func (s *Service) Detail(ctx context.Context, id domain.ProductID) (Detail, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Product: p, Related: []domain.Product{}}
	if p.Category == "" {
		return d, nil
	}

	v, err := s.shared(ctx, "category:"+p.Category, func(ctx context.Context) (any, error) {
		return s.source.ProductsInCategory(ctx, p.Category)
	})
	if err != nil {
		if ctx.Err() != nil {
			return Detail{}, err
		}
		s.logger.WarnContext(ctx, "failed to load related products",
			slog.String("product_id", string(id)),
			slog.String("category", p.Category),
			slog.String("error", err.Error()),
		)
		return d, nil
	}
	d.Related = Related(v.([]domain.Product), p, RelatedLimit)
	return d, nil
}

// Ping fetches the catalog to confirm the source is reachable.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.Products(ctx)
	return err
}
