// Command seedcatalog writes a deterministic catalog JSON file in the catalog
// API's product format. Point CATALOG_FILE at the output to run the
// storefront without network access.
//
// Run: go run ./cmd/seedcatalog -n 500 -o data/catalog.json
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/slug"
)

// ---------------------------------------------------------------------------
// Category distribution
// ---------------------------------------------------------------------------

// categoryDef is a catalog category with its share of generated products.
type categoryDef struct {
	Name   string
	Weight float64 // share of total products (sums to 1.0)
	Types  []string
	// Price range in cents.
	MinPrice int
	MaxPrice int
}

var categories = []categoryDef{
	{
		Name:     "electronics",
		Weight:   0.25,
		Types:    []string{"SSD", "Monitor", "Headphones", "Keyboard", "Power Bank", "Webcam"},
		MinPrice: 19_99,
		MaxPrice: 999_99,
	},
	{
		Name:     "jewelery",
		Weight:   0.15,
		Types:    []string{"Ring", "Necklace", "Bracelet", "Earrings", "Pendant"},
		MinPrice: 9_99,
		MaxPrice: 699_99,
	},
	{
		Name:     "men's clothing",
		Weight:   0.25,
		Types:    []string{"Backpack", "Jacket", "T-Shirt", "Slim Fit Shirt", "Hoodie", "Chinos"},
		MinPrice: 9_99,
		MaxPrice: 199_99,
	},
	{
		Name:     "women's clothing",
		Weight:   0.35,
		Types:    []string{"Rain Jacket", "Blouse", "Maxi Dress", "Cardigan", "Short Sleeve Top", "Trench Coat"},
		MinPrice: 7_99,
		MaxPrice: 249_99,
	},
}

// ---------------------------------------------------------------------------
// Title and description data
// ---------------------------------------------------------------------------

var prefixes = []string{
	"Classic", "Essential", "Premium", "Lightweight", "Vintage",
	"Slim", "Everyday", "Water Resistant", "Handmade", "Ultra",
	"Compact", "Soft Touch", "Organic", "Travel", "Signature",
}

var colors = []string{
	"Black", "Navy", "Ivory", "Olive", "Burgundy",
	"Grey", "Sand", "Teal", "Rose Gold", "Silver",
}

var descriptionTemplates = []string{
	"A %s built for daily use. Durable materials and a clean finish that works with everything.",
	"Our best selling %s, refreshed for this season with better materials and the same easy fit.",
	"This %s balances comfort and style. Easy to care for and made to last.",
	"Designed for people on the move, this %s is light, practical and ready for anything.",
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// allocate splits total across categories by weight; the last category takes
// the remainder.
func allocate(total int) []int {
	counts := make([]int, len(categories))
	remaining := total
	for i, c := range categories {
		if i == len(categories)-1 {
			counts[i] = remaining
			break
		}
		n := int(float64(total) * c.Weight)
		counts[i] = n
		remaining -= n
	}
	return counts
}

// generate returns total products with ids "1".."total". The same seed always
// yields the same catalog.
func generate(total int, seed uint64) []domain.Product {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	products := make([]domain.Product, 0, total)

	for ci, count := range allocate(total) {
		cat := categories[ci]
		for j := 0; j < count; j++ {
			idx := len(products) + 1
			productType := cat.Types[j%len(cat.Types)]
			title := fmt.Sprintf("%s %s - %s",
				prefixes[rng.IntN(len(prefixes))],
				productType,
				colors[rng.IntN(len(colors))],
			)

			// Prices end in .99 or .49.
			dollars := (cat.MinPrice + rng.IntN(cat.MaxPrice-cat.MinPrice+1)) / 100
			cents := 99
			if rng.IntN(2) == 0 {
				cents = 49
			}

			products = append(products, domain.Product{
				ID:          domain.ProductID(fmt.Sprint(idx)),
				Title:       title,
				Description: fmt.Sprintf(descriptionTemplates[rng.IntN(len(descriptionTemplates))], productType),
				Category:    cat.Name,
				Price:       domain.Money(dollars*100 + cents),
				Image:       fmt.Sprintf("https://picsum.photos/seed/%s-%d/400/400", slug.Generate(title), idx),
				Rating: domain.Rating{
					Rate:  float64(10+rng.IntN(41)) / 10,
					Count: rng.IntN(500),
				},
			})
		}
	}

	// Interleave categories so the featured slice is not a single category.
	rng.Shuffle(len(products), func(i, j int) { products[i], products[j] = products[j], products[i] })
	for i := range products {
		products[i].ID = domain.ProductID(fmt.Sprint(i + 1))
	}
	return products
}

func write(path string, products []domain.Product) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var (
		total  int
		seed   uint64
		output string
	)

	cmd := &cobra.Command{
		Use:           "seedcatalog",
		Short:         "Generate a deterministic catalog file for CATALOG_FILE",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if total < 1 {
				return fmt.Errorf("-n must be at least 1")
			}
			log := logger.NewText("info", cmd.ErrOrStderr())

			products := generate(total, seed)
			if err := write(output, products); err != nil {
				return err
			}
			log.Info("catalog written",
				slog.String("path", output),
				slog.Int("products", len(products)),
				slog.Uint64("seed", seed),
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&total, "count", "n", 200, "Number of products")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "data/catalog.json", "Output path")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
