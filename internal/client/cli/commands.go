package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/totpkeeper/internal/client/client"
	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/cryptox"
	"github.com/spf13/cobra"
)

var errCodeRejected = errors.New("code rejected")

func newSignUpCommand(app *App) *cobra.Command {
	var qrPath string

	cmd := &cobra.Command{
		Use:   "signup [username]",
		Short: "Create an account and enroll its authenticator",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userName, password, err := app.credentials(args)
			if err != nil {
				return err
			}

			return app.withClient(cmd.Context(), func(ctx context.Context, c accountClient) error {
				acc, err := c.SignUp(ctx, userName, password)
				if err != nil {
					if errors.Is(err, common.ErrDuplicateAccount) {
						return fmt.Errorf("username %q is taken", userName)
					}
					return err
				}
				return app.printAccount(acc, qrPath)
			})
		},
	}
	cmd.Flags().StringVar(&qrPath, "qr", "", "write the provisioning URI as a PNG QR code to this path")
	return cmd
}

func newLoginCommand(app *App) *cobra.Command {
	var qrPath string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate and rotate the TOTP secret",
		Long: `Authenticate with username and password. Every successful login
rotates the account's TOTP secret, so the authenticator app must be
re-enrolled with the printed provisioning URI.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userName, password, err := app.credentials(args)
			if err != nil {
				return err
			}

			return app.withClient(cmd.Context(), func(ctx context.Context, c accountClient) error {
				acc, err := c.Login(ctx, userName, password)
				if err != nil {
					if errors.Is(err, client.ErrUnauthorized) {
						return errors.New("invalid username or password")
					}
					return err
				}
				fmt.Fprintln(app.out, "Login successful, TOTP secret rotated")
				return app.printAccount(acc, qrPath)
			})
		},
	}
	cmd.Flags().StringVar(&qrPath, "qr", "", "write the provisioning URI as a PNG QR code to this path")
	return cmd
}

func newVerifyCommand(app *App) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "verify [username]",
		Short: "Check a code shown by the authenticator app",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userName, err := app.username(args)
			if err != nil {
				return err
			}

			return app.withClient(cmd.Context(), func(ctx context.Context, c accountClient) error {
				ok, err := c.VerifyCode(ctx, userName, code)
				if err != nil {
					return err
				}
				if !ok {
					return errCodeRejected
				}
				fmt.Fprintln(app.out, "Code accepted")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "the 6-digit code")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newPingCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withClient(cmd.Context(), func(ctx context.Context, c accountClient) error {
				if err := c.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintln(app.out, "OK")
				return nil
			})
		},
	}
}

func newKeygenCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new base64 encryption key for the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(app.out, cryptox.GenerateEncodedKey())
			return nil
		},
	}
}
