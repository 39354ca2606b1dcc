package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSchemesCmd(root *rootOptions) *cobra.Command {
	var (
		page   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "schemes [query]",
		Short: "Fetch one page of scheme listings",
		Long:  "Fetch one page of scheme listings, falling back to cached or sample data when the endpoint is unreachable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			res := a.pipeline.Run(cmd.Context(), query, page)
			if !res.Committed() {
				return fmt.Errorf("fetch schemes: %w", res.Err)
			}
			view := a.pipeline.ViewFor(res)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return renderView(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "1-based page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the view as JSON")
	return cmd
}
