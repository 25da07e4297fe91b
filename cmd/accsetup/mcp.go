package main

import (
	"os"

	"github.com/spf13/cobra"

	"accsetup/internal/mcptool"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve generate_setup and refine_setup as MCP tools on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			srv := mcptool.New("accsetup", version, d.advisor, d.cat, d.lang(opts.lang))
			return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
