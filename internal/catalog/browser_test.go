package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

// gatedSearcher blocks searches for the term "slow" until its context ends.
type gatedSearcher struct {
	started chan struct{}
}

func (g *gatedSearcher) Search(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	if q.SearchTerm == "slow" {
		close(g.started)
		<-ctx.Done()
		return nil, context.Cause(ctx)
	}
	return Query(sampleCatalog(), q), nil
}

func TestBrowser_NewerQueryWins(t *testing.T) {
	g := &gatedSearcher{started: make(chan struct{})}
	b := NewBrowser(g)

	errc := make(chan error, 1)
	go func() {
		q := domain.DefaultQuery()
		q.SearchTerm = "slow"
		_, err := b.Search(context.Background(), q)
		errc <- err
	}()
	<-g.started

	q := domain.DefaultQuery()
	q.Category = "electronics"
	got, err := b.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, ids(got))

	assert.ErrorIs(t, <-errc, ErrSuperseded)
}

func TestBrowser_SequentialQueriesBothSucceed(t *testing.T) {
	b := NewBrowser(NewService(NewStaticSource(sampleCatalog()), newTestLogger()))

	first, err := b.Search(context.Background(), domain.DefaultQuery())
	require.NoError(t, err)
	assert.Len(t, first, 5)

	q := domain.DefaultQuery()
	q.SearchTerm = "jacket"
	second, err := b.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(second))
}

func TestSearcherFunc(t *testing.T) {
	svc := NewService(NewStaticSource(sampleCatalog()), newTestLogger())
	b := NewBrowser(SearcherFunc(svc.Browse))

	q := domain.DefaultQuery()
	q.Category = "mens-clothing"
	got, err := b.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got))
}
