package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/krishi-connect/internal/config"
	"github.com/Sternrassler/krishi-connect/pkg/cache"
	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/Sternrassler/krishi-connect/pkg/pipeline"
)

// app wires the collaborators every command needs.
type app struct {
	cfg      config.Config
	client   *client.Client
	store    cache.Store
	pipeline *pipeline.Pipeline
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	p, err := pipeline.New(cfg.PipelineConfig(), c, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	return &app{cfg: cfg, client: c, store: store, pipeline: p}, nil
}

func (a *app) Close() error {
	a.pipeline.Close()
	return a.store.Close()
}
