package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that do not decompose into a base letter plus a mark.
	special = strings.NewReplacer(
		"ı", "i", "ß", "ss", "æ", "ae", "ø", "o", "đ", "d", "ł", "l", "&", " and ",
	)
)

// Generate creates a URL-friendly slug from a display name. Diacritics are
// stripped, apostrophes are dropped so possessives stay one word, and any
// other run of non-alphanumerics becomes a single hyphen.
//
// Examples:
//   - "men's clothing" → "mens-clothing"
//   - "Kadın Giyim" → "kadin-giyim"
//   - "Crème Brûlée" → "creme-brulee"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = special.Replace(s)
	s = stripMarks(s)
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Equal reports whether name renders to slug s.
func Equal(name, s string) bool {
	return Generate(name) == s
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
