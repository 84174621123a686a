package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

type listingView struct {
	Query    domain.CatalogQuery                `json:"query"`
	Products pagination.Result[domain.Product] `json:"products"`
	Facets   []catalog.Facet                    `json:"facets"`
}

type productView struct {
	Product    domain.Product   `json:"product"`
	Related    []domain.Product `json:"related"`
	InCart     bool             `json:"in_cart"`
	InWishlist bool             `json:"in_wishlist"`
}

type categoryView struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func productsCmd(sh *shell) *cobra.Command {
	var (
		search   string
		category string
		maxPrice string
		sortKey  string
		page     int
		perPage  int
	)

	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"ls"},
		Short:   "List catalog products",
		Example: `  shopctl products
  shopctl products --category electronics --sort lowToHigh
  shopctl products --search backpack --max-price 150`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := domain.DefaultQuery()
			q.SearchTerm = search
			if category != "" {
				q.Category = category
			}
			if maxPrice != "" {
				m, err := domain.ParseMoney(maxPrice)
				if err != nil {
					return err
				}
				if m < 0 {
					return fmt.Errorf("--max-price must not be negative")
				}
				q.MaxPrice = m
			}
			sort, err := domain.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			q.Sort = sort

			if page < 1 || perPage < 1 || perPage > pagination.MaxPerPage {
				return fmt.Errorf("--page must be positive and --per-page between 1 and %d", pagination.MaxPerPage)
			}
			params := pagination.Params{Page: page, PerPage: perPage, Offset: (page - 1) * perPage}

			products, err := sh.catalog.Browse(cmd.Context(), q)
			if err != nil {
				return err
			}
			unfiltered := q
			unfiltered.Category = domain.CategoryAll
			all, err := sh.catalog.Search(cmd.Context(), unfiltered)
			if err != nil {
				return err
			}

			view := listingView{
				Query:    q,
				Products: pagination.Slice(products, params),
				Facets:   catalog.Facets(all),
			}
			return sh.output(cmd, view, func(w io.Writer) {
				writeListing(w, view.Products, view.Facets)
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "q", "", "Match title or description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name or slug")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "Price ceiling, e.g. 150 or 99.99")
	cmd.Flags().StringVar(&sortKey, "sort", "", "featured, lowToHigh, highToLow or rating")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", pagination.DefaultPerPage, "Products per page")
	return cmd
}

func productCmd(sh *shell) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show a product with related products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ProductID(args[0])
			detail, err := sh.catalog.Detail(cmd.Context(), id)
			if err != nil {
				return err
			}
			s, err := sh.store(cmd.Context())
			if err != nil {
				return err
			}

			view := productView{
				Product:    detail.Product,
				Related:    detail.Related,
				InCart:     s.InCart(id),
				InWishlist: s.InWishlist(id),
			}
			return sh.output(cmd, view, func(w io.Writer) { writeDetail(w, view) })
		},
	}
}

func categoriesCmd(sh *shell) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := sh.catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			view := make([]categoryView, 0, len(names))
			for _, n := range names {
				view = append(view, categoryView{Name: n, Slug: slug.Generate(n)})
			}
			return sh.output(cmd, view, func(w io.Writer) {
				for _, c := range view {
					fmt.Fprintf(w, "%-24s %s\n", c.Name, c.Slug)
				}
			})
		},
	}
}
