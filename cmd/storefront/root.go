package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/nikolayk812/storefront-client/internal/config"
	"github.com/nikolayk812/storefront-client/internal/port"
	"github.com/spf13/cobra"
)

var errInvalidForm = errors.New("invalid form")

type cli struct {
	envFiles []string
	yes      bool
	in       io.Reader

	// store replaces the configured backend when set.
	store port.Store

	app *app
}

func (c *cli) close() {
	if c.app != nil {
		c.app.close()
		c.app = nil
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Terminal client for the storefront backend",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.envFiles...)
			if err != nil {
				return fmt.Errorf("config.Load: %w", err)
			}

			c.app, err = newApp(cmd.Context(), cfg, c.store, c.in, cmd.OutOrStdout(), cmd.ErrOrStderr(), c.yes)
			if err != nil {
				return fmt.Errorf("newApp: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "dotenv files to load before the environment")
	root.PersistentFlags().BoolVarP(&c.yes, "yes", "y", false, "answer yes to confirmations")

	root.AddCommand(
		newLoginCmd(c),
		newRegisterCmd(c),
		newProfileCmd(c),
		newStatusCmd(c),
		newLogoutCmd(c),
		newCardsCmd(c),
		newCardCmd(c),
		newCategoriesCmd(c),
		newCartCmd(c),
		newWatchCmd(c),
	)

	return root
}
