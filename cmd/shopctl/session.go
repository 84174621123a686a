package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
)

type cartView struct {
	Lines   []domain.CartLine   `json:"lines"`
	Summary domain.OrderSummary `json:"summary"`
	Version uint64              `json:"version"`
}

type wishlistView struct {
	Products []domain.Product `json:"products"`
	Version  uint64           `json:"version"`
}

func (sh *shell) cartView(s *session.Store) cartView {
	state, version := s.SnapshotVersion()
	lines := state.Cart
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartView{
		Lines:   lines,
		Summary: domain.Summarize(state.Cart, sh.checkout.Pricing()),
		Version: version,
	}
}

func (sh *shell) showCart(cmd *cobra.Command, s *session.Store) error {
	view := sh.cartView(s)
	return sh.output(cmd, view, func(w io.Writer) { writeCart(w, view) })
}

func (sh *shell) showWishlist(cmd *cobra.Command, s *session.Store) error {
	state, version := s.SnapshotVersion()
	view := wishlistView{Products: state.Wishlist, Version: version}
	if view.Products == nil {
		view.Products = []domain.Product{}
	}
	return sh.output(cmd, view, func(w io.Writer) { writeWishlist(w, view.Products) })
}

func cartCmd(sh *shell) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart and its order summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sh.store(cmd.Context())
			if err != nil {
				return err
			}
			return sh.showCart(cmd, s)
		},
	}

	cmd.AddCommand(
		cartAddCmd(sh),
		cartRemoveCmd(sh),
		cartQtyCmd(sh),
		cartClearCmd(sh),
	)
	return cmd
}

func cartAddCmd(sh *shell) *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a catalog product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if qty < 1 {
				return fmt.Errorf("--qty must be at least 1")
			}
			ctx := cmd.Context()
			product, err := sh.catalog.Product(ctx, domain.ProductID(args[0]))
			if err != nil {
				return err
			}
			s, err := sh.store(ctx)
			if err != nil {
				return err
			}

			if err := warnPersist(cmd, s.AddToCart(ctx, product)); err != nil {
				return err
			}
			if qty > 1 {
				if err := warnPersist(cmd, s.UpdateQuantity(ctx, product.ID, qty-1)); err != nil {
					return err
				}
			}
			if !sh.asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Added %s", product.Title))
			}
			return sh.showCart(cmd, s)
		},
	}

	cmd.Flags().IntVarP(&qty, "qty", "n", 1, "Quantity to add")
	return cmd
}

func cartRemoveCmd(sh *shell) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a product from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sh.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := warnPersist(cmd, s.RemoveFromCart(cmd.Context(), domain.ProductID(args[0]))); err != nil {
				return err
			}
			return sh.showCart(cmd, s)
		},
	}
}

func cartQtyCmd(sh *shell) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qty <product-id> <delta>",
		Short: "Change a cart line's quantity by delta; the line is removed at zero",
		Example: `  shopctl cart qty 3 +2
  shopctl cart qty 3 -1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			s, err := sh.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := warnPersist(cmd, s.UpdateQuantity(cmd.Context(), domain.ProductID(args[0]), delta)); err != nil {
				return err
			}
			return sh.showCart(cmd, s)
		},
	}
	// Flags must precede the product id so a negative delta is not read as one.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func cartClearCmd(sh *shell) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sh.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := warnPersist(cmd, s.ClearCart(cmd.Context())); err != nil {
				return err
			}
			return sh.showCart(cmd, s)
		},
	}
}

func wishlistCmd(sh *shell) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wishlist",
		Aliases: []string{"wl"},
		Short:   "Show the wishlist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sh.store(cmd.Context())
			if err != nil {
				return err
			}
			return sh.showWishlist(cmd, s)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Add a product to the wishlist, or remove it if present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			product, err := sh.catalog.Product(ctx, domain.ProductID(args[0]))
			if err != nil {
				return err
			}
			s, err := sh.store(ctx)
			if err != nil {
				return err
			}
			added, err := s.ToggleWishlist(ctx, product)
			if err := warnPersist(cmd, err); err != nil {
				return err
			}
			if !sh.asJSON {
				if added {
					fmt.Fprintln(cmd.OutOrStdout(), color.MagentaString("♥ Saved %s", product.Title))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), color.HiBlackString("Removed %s", product.Title))
				}
			}
			return sh.showWishlist(cmd, s)
		},
	})
	return cmd
}

func checkoutCmd(sh *shell) *cobra.Command {
	var contact domain.Contact

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Example: `  shopctl checkout --name "Ada Lovelace" --email ada@example.com \
    --address "12 Analytical Row" --city London --postal-code "N1 9GU"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sh.store(cmd.Context())
			if err != nil {
				return err
			}
			receipt, err := sh.checkout.PlaceOrder(cmd.Context(), s, contact)
			if err := warnPersist(cmd, err); err != nil {
				return err
			}
			return sh.output(cmd, receipt, func(w io.Writer) { writeReceipt(w, receipt) })
		},
	}

	cmd.Flags().StringVar(&contact.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&contact.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&contact.Address, "address", "", "Street address")
	cmd.Flags().StringVar(&contact.City, "city", "", "City")
	cmd.Flags().StringVar(&contact.PostalCode, "postal-code", "", "Postal code")
	return cmd
}
