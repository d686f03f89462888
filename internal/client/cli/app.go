package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/totpkeeper/internal/api"
	"github.com/dmitrijs2005/totpkeeper/internal/client/client"
	"github.com/dmitrijs2005/totpkeeper/internal/client/config"
	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/filex"
	"github.com/dmitrijs2005/totpkeeper/internal/totpx"
)

const qrSize = 256

type accountClient interface {
	SignUp(ctx context.Context, userName, password string) (*api.AccountResponse, error)
	Login(ctx context.Context, userName, password string) (*api.AccountResponse, error)
	VerifyCode(ctx context.Context, userName, code string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// dial and getPassword are indirections used to facilitate testing.
var (
	dial = func(addr string) (accountClient, error) {
		return client.NewGRPCClient(addr)
	}
	getPassword = GetPassword
)

type App struct {
	config *config.Config
	reader *bufio.Reader
	out    io.Writer
}

func (a *App) withClient(ctx context.Context, fn func(context.Context, accountClient) error) error {
	c, err := dial(a.config.ServerEndpointAddr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.config.ServerEndpointAddr, err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	return fn(ctx, c)
}

// username returns args[0] or prompts for it.
func (a *App) username(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return GetSimpleText(a.reader, "Enter username", a.out)
}

func (a *App) credentials(args []string) (string, string, error) {
	userName, err := a.username(args)
	if err != nil {
		return "", "", err
	}

	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)

	return userName, string(pw), nil
}

func (a *App) printAccount(acc *api.AccountResponse, qrPath string) error {
	fmt.Fprintf(a.out, "Account: %s (id=%s)\n", acc.Username, acc.ID)
	fmt.Fprintf(a.out, "Provisioning URI: %s\n", acc.ProvisioningURI)
	if acc.CurrentCode != "" {
		fmt.Fprintf(a.out, "Current code: %s\n", acc.CurrentCode)
	}

	if qrPath == "" {
		return nil
	}

	png, err := totpx.QRCode(acc.ProvisioningURI, qrSize)
	if err != nil {
		return err
	}
	if err := filex.WritePrivateFile(qrPath, png); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "QR code written to %s\n", qrPath)
	return nil
}
