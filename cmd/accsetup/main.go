// Accsetup is the terminal front end of the setup advisor. It asks for a
// car, a track and a driving style, prints the generated setup, and then
// keeps refining it from free-text feedback over the same chat session.
// The mcp subcommand exposes the same operations as MCP tools on stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	lang string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "accsetup",
		Short:         "Generate and fine-tune Assetto Corsa Competizione car setups",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.lang, "lang", "", "label language, hu or en (default UI_LOCALE)")

	root.AddCommand(
		newAskCmd(opts),
		newMCPCmd(opts),
		newOptionsCmd(),
	)
	return root
}
