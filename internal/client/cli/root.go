package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the totpkeeper command tree reading prompts from in
// and printing to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	app := &App{reader: bufio.NewReader(in), out: out}

	var (
		configPath string
		addr       string
		timeout    time.Duration
	)

	root := &cobra.Command{
		Use:           "totpkeeper",
		Short:         "Client for the TOTPKeeper account service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ServerEndpointAddr = addr
			}
			if cmd.Flags().Changed("timeout") {
				cfg.RequestTimeout = timeout
			}
			app.config = cfg
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a JSON config file")
	pf.StringVarP(&addr, "addr", "a", "", "address and port of the server")
	pf.DurationVar(&timeout, "timeout", 0, "per-request timeout")

	root.AddCommand(
		newSignUpCommand(app),
		newLoginCommand(app),
		newVerifyCommand(app),
		newPingCommand(app),
		newKeygenCommand(app),
	)
	return root
}

// Execute runs the command tree and prints the error, if any, to out.
func Execute(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	root := NewRootCommand(in, out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return err
}
