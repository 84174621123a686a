package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/pagination"
)

const rule = "────────────────────────────────────────────────────────────"

// output writes v as indented JSON when --json is set and calls pretty
// otherwise.
func (sh *shell) output(cmd *cobra.Command, v any, pretty func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if sh.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	pretty(w)
	return nil
}

// warnPersist reports a change that applied but was not saved and swallows
// the error; any other error is returned.
func warnPersist(cmd *cobra.Command, err error) error {
	var pe *session.PersistError
	if errors.As(err, &pe) {
		fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("Warning: %s", pe.Warning()))
		return nil
	}
	return err
}

func stars(rate float64) string {
	full := int(rate + 0.5)
	full = max(0, min(5, full))
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeProductLine(w io.Writer, p domain.Product) {
	fmt.Fprintf(w, "%s  %-44s %10s  %s  %s\n",
		color.HiBlackString("%4s", p.ID),
		truncate(p.Title, 44),
		color.GreenString("$%s", p.Price),
		color.YellowString("%s", stars(p.Rating.Rate)),
		color.CyanString("%s", p.Category),
	)
}

func writeListing(w io.Writer, page pagination.Result[domain.Product], facets []catalog.Facet) {
	if page.TotalCount == 0 {
		fmt.Fprintln(w, "No products match")
		return
	}
	fmt.Fprintln(w, color.CyanString("Products (%d)", page.TotalCount))
	fmt.Fprintln(w, rule)
	for _, p := range page.Data {
		writeProductLine(w, p)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Page %d of %d\n", page.Page, max(page.TotalPages, 1))

	if len(facets) > 0 {
		parts := make([]string, 0, len(facets))
		for _, f := range facets {
			parts = append(parts, fmt.Sprintf("%s (%d)", f.Slug, f.Count))
		}
		fmt.Fprintln(w, color.HiBlackString("Categories: %s", strings.Join(parts, ", ")))
	}
}

func writeDetail(w io.Writer, v productView) {
	p := v.Product
	fmt.Fprintln(w, color.New(color.Bold).Sprint(p.Title))
	fmt.Fprintf(w, "%s  %s  %s (%d reviews)\n",
		color.GreenString("$%s", p.Price),
		color.CyanString("%s", p.Category),
		color.YellowString("%s", stars(p.Rating.Rate)),
		p.Rating.Count,
	)
	if v.InCart {
		fmt.Fprintln(w, color.GreenString("✓ in cart"))
	}
	if v.InWishlist {
		fmt.Fprintln(w, color.MagentaString("♥ in wishlist"))
	}
	if p.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.Description)
	}
	if len(v.Related) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.CyanString("Related"))
		for _, r := range v.Related {
			writeProductLine(w, r)
		}
	}
}

func writeSummary(w io.Writer, s domain.OrderSummary) {
	fmt.Fprintf(w, "%-10s %10s\n", "Subtotal", "$"+s.Subtotal.String())
	fmt.Fprintf(w, "%-10s %10s\n", "Shipping", "$"+s.Shipping.String())
	fmt.Fprintf(w, "%-10s %10s\n", "Tax", "$"+s.Tax.String())
	fmt.Fprintf(w, "%-10s %10s\n", "Total", color.New(color.Bold).Sprint("$"+s.Total.String()))
}

func writeCart(w io.Writer, v cartView) {
	if len(v.Lines) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}
	fmt.Fprintln(w, color.CyanString("Cart (%d items)", v.Summary.ItemCount))
	fmt.Fprintln(w, rule)
	for _, l := range v.Lines {
		fmt.Fprintf(w, "%s  %-36s %3d × %9s = %s\n",
			color.HiBlackString("%4s", l.Product.ID),
			truncate(l.Product.Title, 36),
			l.Quantity,
			"$"+l.Product.Price.String(),
			color.GreenString("$%s", l.Total()),
		)
	}
	fmt.Fprintln(w, rule)
	writeSummary(w, v.Summary)
}

func writeWishlist(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "Wishlist is empty")
		return
	}
	fmt.Fprintln(w, color.MagentaString("Wishlist (%d)", len(products)))
	fmt.Fprintln(w, rule)
	for _, p := range products {
		writeProductLine(w, p)
	}
}

func writeReceipt(w io.Writer, r domain.Receipt) {
	fmt.Fprintln(w, color.GreenString("✓ Order placed: %s", r.OrderID))
	writeSummary(w, r.Summary)
}
