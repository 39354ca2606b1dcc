package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/krishi-connect/pkg/pagination"
)

func newSyncCmd(root *rootOptions) *cobra.Command {
	cfg := pagination.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch every listing page into the cache",
		Long:  "Fetch every page of the unfiltered listing concurrently and store it so details lookups find any scheme.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), root.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			res, err := a.pipeline.Sync(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "synced %d schemes from %d pages in %s\n",
				res.Items, res.Pages, time.Since(start).Round(time.Millisecond))
			return err
		},
	}

	cmd.Flags().IntVar(&cfg.MaxConcurrency, "concurrency", cfg.MaxConcurrency, "Parallel page requests")
	cmd.Flags().IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Maximum pages to fetch (0 = no cap)")
	cmd.Flags().DurationVar(&cfg.Timeout, "page-timeout", cfg.Timeout, "Timeout per page")
	return cmd
}
