package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const tracerName = "github.com/utafrali/storefront/internal/catalog"

// DefaultBaseURL is the public catalog API the storefront was built against.
const DefaultBaseURL = "https://fakestoreapi.com"

// ErrCodeUnavailable is the AppError code for catalog fetch failures.
const ErrCodeUnavailable = "CATALOG_UNAVAILABLE"

// maxBodyBytes caps catalog responses.
const maxBodyBytes = 8 << 20

// Getter is the transport RemoteSource uses; *httpclient.CircuitBreakerClient
// satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// RemoteSource reads products from a REST catalog exposing /products,
// /products/{id} and /products/category/{name}.
type RemoteSource struct {
	http    Getter
	baseURL string
	tracer  trace.Tracer
}

// NewRemoteSource returns a source rooted at baseURL.
func NewRemoteSource(client Getter, baseURL string) *RemoteSource {
	return &RemoteSource{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  otel.Tracer(tracerName),
	}
}

func (s *RemoteSource) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := s.getJSON(ctx, "catalog.products", "/products", &products); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, unavailable(fmt.Errorf("products endpoint missing: %v", err))
		}
		return nil, err
	}
	return products, nil
}

// Product returns one product. The upstream answers unknown ids with an empty
// 200 body, which is reported as not found.
func (s *RemoteSource) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	var p domain.Product
	found, err := s.getJSON(ctx, "catalog.product", "/products/"+url.PathEscape(string(id)), &p)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Product{}, apperrors.NotFound("product", string(id))
		}
		return domain.Product{}, err
	}
	if !found || p.ID == "" {
		return domain.Product{}, apperrors.NotFound("product", string(id))
	}
	return p, nil
}

func (s *RemoteSource) ProductsInCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := s.getJSON(ctx, "catalog.category", "/products/category/"+url.PathEscape(category), &products); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []domain.Product{}, nil
		}
		return nil, err
	}
	return products, nil
}

// getJSON fetches path and decodes it into v. found is false when the body
// is empty or JSON null.
func (s *RemoteSource) getJSON(ctx context.Context, op, path string, v any) (found bool, err error) {
	target := s.baseURL + path
	ctx, span := s.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.full", target),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	resp, err := s.http.Get(ctx, target)
	if err != nil {
		return false, unavailable(err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := httpclient.ParseResponseError(resp, "catalog")
		if errors.Is(perr, apperrors.ErrNotFound) {
			return false, perr
		}
		return false, unavailable(perr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, unavailable(fmt.Errorf("read catalog response: %w", err))
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return false, unavailable(fmt.Errorf("decode catalog response: %w", err))
	}
	return true, nil
}

func unavailable(cause error) error {
	return apperrors.Unavailable(ErrCodeUnavailable, "product catalog is unavailable", cause)
}
