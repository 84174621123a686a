package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"electronics", "electronics"},
		{"men's clothing", "mens-clothing"},
		{"women’s clothing", "womens-clothing"},
		{"Jewelery", "jewelery"},
		{"Home & Garden", "home-and-garden"},
		{"Kadın Giyim", "kadin-giyim"},
		{"Çocuk Ürünleri", "cocuk-urunleri"},
		{"Crème Brûlée", "creme-brulee"},
		{"Straße", "strasse"},
		{"  Hello   World!  ", "hello-world"},
		{"--a--b--", "a-b"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.in))
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	for _, in := range []string{"men's clothing", "Crème Brûlée", "a b c"} {
		once := Generate(in)
		assert.Equal(t, once, Generate(once))
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("men's clothing", "mens-clothing"))
	assert.False(t, Equal("men's clothing", "men-s-clothing"))
}
