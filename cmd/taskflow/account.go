package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosuda/taskflow/internal/config"
	"github.com/gosuda/taskflow/internal/remote"
	"github.com/gosuda/taskflow/internal/tui"
)

type accountFlags struct {
	email    string
	name     string
	password string
}

func newRegisterCmd() *cobra.Command {
	var f accountFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if f.email == "" || f.password == "" {
				values, err := tui.Prompt(ctx, "Create a taskflow account", []tui.Field{
					{Label: "Email", Value: f.email},
					{Label: "Name", Value: f.name, Optional: true},
					{Label: "Password", Value: f.password, Secret: true},
				})
				if err != nil {
					return promptError(err)
				}
				f.email, f.name, f.password = values[0], values[1], values[2]
			}
			return signIn(ctx, cmd, func(c *remote.Client) (*remote.Tokens, error) {
				return c.Register(ctx, f.email, f.password, f.name)
			})
		},
	}
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.name, "name", "", "display name (defaults to the email's local part)")
	cmd.Flags().StringVar(&f.password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var f accountFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the board service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if f.email == "" || f.password == "" {
				values, err := tui.Prompt(ctx, "Sign in to taskflow", []tui.Field{
					{Label: "Email", Value: f.email},
					{Label: "Password", Value: f.password, Secret: true},
				})
				if err != nil {
					return promptError(err)
				}
				f.email, f.password = values[0], values[1]
			}
			return signIn(ctx, cmd, func(c *remote.Client) (*remote.Tokens, error) {
				return c.Login(ctx, f.email, f.password)
			})
		},
	}
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().StringVar(&f.password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if err := removeCredentials(cfg.Credentials); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

// signIn obtains tokens with auth, resolves the account and stores the session.
func signIn(ctx context.Context, cmd *cobra.Command, auth func(*remote.Client) (*remote.Tokens, error)) error {
	cfg, client, logger, closer, err := openClient()
	if err != nil {
		return err
	}
	defer closer.Close()

	tokens, err := auth(client)
	if err != nil {
		return describeAuthError(err)
	}
	client.SetToken(tokens.AccessToken)

	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	creds := &credentials{
		APIURL:       cfg.APIURL,
		UserID:       me.ID,
		Name:         me.Name,
		Email:        me.Email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := saveCredentials(cfg.Credentials, creds); err != nil {
		return err
	}
	logger.Info().Str("user_id", me.ID.String()).Msg("cli: signed in")
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>.\n", me.Name, me.Email)
	return nil
}

func describeAuthError(err error) error {
	var se *remote.StatusError
	if errors.As(err, &se) && se.Detail != "" {
		return errors.New(se.Detail)
	}
	return err
}

func promptError(err error) error {
	if errors.Is(err, tui.ErrPromptCancelled) {
		return errors.New("cancelled")
	}
	return err
}
