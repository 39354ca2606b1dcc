package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/krishi-connect/internal/server"
)

func newDetailsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "details <id>",
		Short: "Show a cached scheme",
		Long:  "Show a scheme from the cache. Run schemes or sync first to populate it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, ok, err := a.pipeline.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), server.NotFoundMessage)
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			return renderRecord(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}
