package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/pkg/validator"
)

func TestAllocate_SumsToTotal(t *testing.T) {
	for _, total := range []int{1, 7, 200, 1001} {
		sum := 0
		for _, n := range allocate(total) {
			assert.GreaterOrEqual(t, n, 0)
			sum += n
		}
		assert.Equal(t, total, sum, "total %d", total)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(50, 7)
	b := generate(50, 7)
	c := generate(50, 8)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerate_ValidProducts(t *testing.T) {
	products := generate(120, 42)
	require.Len(t, products, 120)

	seen := make(map[string]bool)
	for i, p := range products {
		require.NoError(t, validator.Validate(p), "product %d", i)
		assert.False(t, seen[string(p.ID)], "duplicate id %s", p.ID)
		seen[string(p.ID)] = true
		assert.Positive(t, p.Price.Cents())
		assert.GreaterOrEqual(t, p.Rating.Rate, 1.0)
		assert.LessOrEqual(t, p.Rating.Rate, 5.0)
	}
	assert.Len(t, catalog.Categories(products), len(categories)+1)
}

func TestRootCmd_WritesLoadableCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "catalog.json")
	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-n", "30", "-o", path})

	require.NoError(t, cmd.Execute())

	src, err := catalog.LoadFile(path)
	require.NoError(t, err)
	products, err := src.Products(t.Context())
	require.NoError(t, err)
	assert.Len(t, products, 30)
	assert.Contains(t, stderr.String(), "catalog written")
}

func TestRootCmd_RejectsZeroCount(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"-n", "0", "-o", filepath.Join(t.TempDir(), "c.json")})

	assert.Error(t, cmd.Execute())
}
