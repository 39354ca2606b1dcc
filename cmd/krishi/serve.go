package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/krishi-connect/internal/server"
	"github.com/Sternrassler/krishi-connect/pkg/jobs"
	"github.com/Sternrassler/krishi-connect/pkg/weather"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start an HTTP server exposing the scheme listing, details lookup, job feed, weather and the data.gov.in proxy.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, cleanup, err := buildServer(ctx, root)
			if err != nil {
				return err
			}
			defer cleanup()

			return srv.ListenAndServe(ctx, cfg.Server.Addr(), cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides config)")
	return cmd
}

// buildServer wires the server from the loaded configuration.
func buildServer(ctx context.Context, root *rootOptions) (*server.Server, func(), error) {
	cfg := root.cfg

	a, err := newApp(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	feed, err := jobs.NewFeed(cfg.Jobs.URL, a.client, cfg.Jobs.TTL)
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("create job feed: %w", err)
	}

	srv, err := server.New(server.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ProxyURL:       cfg.Proxy.UpstreamURL(),
		ProxyPageSize:  cfg.Proxy.DefaultPageSize,
	}, server.Deps{
		Pipeline: a.pipeline,
		Store:    a.store,
		Jobs:     feed,
		Weather:  weather.New(cfg.Weather.BaseURL, cfg.Weather.APIKey, a.client),
		Upstream: a.client,
	})
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	return srv, func() { _ = a.Close() }, nil
}
