package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront-client/internal/form"
	"github.com/nikolayk812/storefront-client/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNotLoggedIn = errors.New("not logged in")

func newLoginCmd(c *cli) *cobra.Command {
	var f form.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := c.app

			errs := a.validator.Check(f)
			a.validator.Apply([]string{"email", "senha"}, errs)
			if len(errs) > 0 {
				return errInvalidForm
			}

			result, err := a.client.Login(ctx, f.Email, f.Password)
			if err != nil {
				a.presenter.Show(err.Error(), notify.Error)
				return fmt.Errorf("client.Login: %w", err)
			}

			if err := a.session.SaveToken(ctx, result.Token); err != nil {
				return fmt.Errorf("session.SaveToken: %w", err)
			}

			message := result.Message
			if message == "" {
				message = "Login realizado com sucesso!"
			}
			a.presenter.Show(message, notify.Success)

			return a.page.UpdateAuthUI(ctx)
		},
	}

	cmd.Flags().StringVar(&f.Email, "email", "", "account email")
	cmd.Flags().StringVar(&f.Password, "senha", "", "account password")

	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var f form.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			errs := a.validator.Check(f)
			a.validator.Apply([]string{"nome", "email", "senha"}, errs)
			if len(errs) > 0 {
				return errInvalidForm
			}

			if _, err := a.client.Register(cmd.Context(), f.Name, f.Email, f.Password); err != nil {
				a.presenter.Show(err.Error(), notify.Error)
				return fmt.Errorf("client.Register: %w", err)
			}

			a.presenter.Show("Cadastro realizado com sucesso!", notify.Success)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Name, "nome", "", "display name")
	cmd.Flags().StringVar(&f.Email, "email", "", "account email")
	cmd.Flags().StringVar(&f.Password, "senha", "", "account password")

	return cmd
}

func newProfileCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := c.app

			ok, err := a.page.RequireAuth(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errNotLoggedIn
			}

			profile, err := a.client.Profile(ctx)
			if err != nil {
				a.presenter.Show(err.Error(), notify.Error)
				return fmt.Errorf("client.Profile: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Nome:  %s\n", profile.Name)
			fmt.Fprintf(out, "Email: %s\n", profile.Email)
			return nil
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Render the cart counter and the navigation for the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := c.app

			if err := a.page.Init(ctx); err != nil {
				return fmt.Errorf("page.Init: %w", err)
			}

			expiry, ok, err := a.session.Expiry(ctx)
			if err != nil {
				a.logger.Warn("token expiry unreadable", zap.Error(err))
				return nil
			}
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Sessão expira em %s\n", expiry.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			done, err := c.app.page.Logout(cmd.Context())
			if err != nil {
				return fmt.Errorf("page.Logout: %w", err)
			}
			if !done {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelado")
			}
			return nil
		},
	}
}
