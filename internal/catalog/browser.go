package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// ErrSuperseded is returned to a search that a newer search replaced.
var ErrSuperseded = errors.New("catalog query superseded by a newer query")

// Searcher runs a catalog query; *Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	return f(ctx, q)
}

// Browser applies last-query-wins to a stream of searches from one viewer:
// starting a search cancels the one in flight, and only the newest search
// may deliver results.
type Browser struct {
	searcher Searcher

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

// NewBrowser returns a Browser over searcher.
func NewBrowser(searcher Searcher) *Browser {
	return &Browser{searcher: searcher}
}

// Search runs q, returning ErrSuperseded if another Search started before
// this one finished.
func (b *Browser) Search(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	b.mu.Lock()
	if b.cancel != nil {
		b.cancel(ErrSuperseded)
	}
	b.seq++
	seq := b.seq
	b.cancel = cancel
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		if b.seq == seq {
			b.cancel = nil
		}
		b.mu.Unlock()
		cancel(nil)
	}()

	products, err := b.searcher.Search(ctx, q)

	b.mu.Lock()
	stale := b.seq != seq
	b.mu.Unlock()
	if stale {
		return nil, ErrSuperseded
	}
	return products, err
}
