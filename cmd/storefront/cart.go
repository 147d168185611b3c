package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/nikolayk812/storefront-client/internal/domain"
	"github.com/nikolayk812/storefront-client/internal/page"
	"github.com/spf13/cobra"
)

const clearPrompt = "Deseja esvaziar o carrinho?"

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the shopping cart",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "List the cart line items and the total",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cart, err := c.app.ledger.Cart(cmd.Context())
				if err != nil {
					return fmt.Errorf("ledger.Cart: %w", err)
				}

				if cart.IsEmpty() {
					fmt.Fprintln(cmd.OutOrStdout(), "Carrinho vazio")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNOME\tQTD\tPREÇO\tSUBTOTAL")
				for _, item := range cart.Items {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", item.ID, item.Name, item.Quantity,
						page.FormatCurrency(item.UnitPrice), page.FormatCurrency(item.Subtotal()))
				}
				fmt.Fprintf(tw, "\t\t%d\t\t%s\n", cart.ItemCount(), page.FormatCurrency(cart.Total()))
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "add <id>",
			Short: "Add one unit of a catalog product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()

				card, err := c.app.client.Card(ctx, domain.ProductID(args[0]))
				if err != nil {
					return fmt.Errorf("client.Card: %w", err)
				}

				return c.app.page.AddToCart(ctx, card.Product())
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a line item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.ledger.RemoveItem(cmd.Context(), domain.ProductID(args[0]))
			},
		},
		&cobra.Command{
			Use:   "qty <id> <quantity>",
			Short: "Set the quantity of a line item, 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				quantity, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity[%s] is not a number", args[1])
				}

				return c.app.ledger.UpdateQuantity(cmd.Context(), domain.ProductID(args[0]), quantity)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if !c.app.term.Confirm(clearPrompt) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelado")
					return nil
				}
				return c.app.ledger.Clear(cmd.Context())
			},
		},
	)

	return cmd
}

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the cart counter until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if err := c.app.page.Init(ctx); err != nil {
				return fmt.Errorf("page.Init: %w", err)
			}

			c.app.page.Run(ctx)
			return nil
		},
	}
}
