package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"accsetup/internal/catalog"
)

func newOptionsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the cars, tracks and driving styles on offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load(os.Getenv("CATALOG_PATH"))
			if err != nil {
				return err
			}
			return printOptions(cmd.OutOrStdout(), cat, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

func printOptions(w io.Writer, cat *catalog.Catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cat)
	}
	fmt.Fprintln(w, headingStyle.Render("Cars"))
	for _, c := range cat.Cars {
		fmt.Fprintf(w, "  %s\n", c.Label())
	}
	fmt.Fprintln(w, headingStyle.Render("Tracks"))
	for _, t := range cat.Tracks {
		fmt.Fprintf(w, "  %s\n", t)
	}
	fmt.Fprintln(w, headingStyle.Render("Driving styles"))
	for _, s := range cat.Styles {
		fmt.Fprintf(w, "  %s\n", s)
	}
	return nil
}
