package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nikolayk812/storefront-client/internal/domain"
	"github.com/nikolayk812/storefront-client/internal/page"
	"github.com/spf13/cobra"
)

func newCardsCmd(c *cli) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cards []domain.Card
				err   error
			)
			if category != "" {
				cards, err = c.app.client.CardsByCategory(cmd.Context(), category)
			} else {
				cards, err = c.app.client.Cards(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("list cards: %w", err)
			}

			return printCards(cmd.OutOrStdout(), cards)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only cards of this category")

	return cmd
}

func newCardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "card <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := c.app.client.Card(cmd.Context(), domain.ProductID(args[0]))
			if err != nil {
				return fmt.Errorf("client.Card: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", card.ID, card.Name)
			fmt.Fprintf(out, "Preço: %s\n", page.FormatCurrency(card.Price))
			if card.Category != "" {
				fmt.Fprintf(out, "Categoria: %s\n", card.Category)
			}
			if card.Description != "" {
				fmt.Fprintln(out, card.Description)
			}
			return nil
		},
	}
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := c.app.client.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("client.Categories: %w", err)
			}

			for _, category := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", category.ID, category.Name)
			}
			return nil
		},
	}
}

func printCards(w io.Writer, cards []domain.Card) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tPREÇO\tCATEGORIA")
	for _, card := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", card.ID, card.Name, page.FormatCurrency(card.Price), card.Category)
	}
	return tw.Flush()
}
