package config

import (
	"os"

	"github.com/Sternrassler/krishi-connect/pkg/cache"
	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/Sternrassler/krishi-connect/pkg/logging"
	"github.com/Sternrassler/krishi-connect/pkg/pipeline"
)

// ClientConfig returns the outbound client settings.
func (c Config) ClientConfig() client.Config {
	cc := client.DefaultConfig(c.Fetch.UserAgent)
	cc.Timeout = c.Fetch.Timeout
	cc.Retry.MaxAttempts = c.Fetch.Attempts
	cc.Retry.BaseDelay = c.Fetch.BaseDelay
	cc.RateLimit.RequestsPerSecond = c.Fetch.RequestsPerSecond
	cc.RateLimit.Burst = c.Fetch.Burst
	return cc
}

// CacheOptions returns the cache backend selection.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       cache.Backend(c.Cache.Backend),
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		SQLiteDir:     c.Cache.SQLiteDir,
	}
}

// PipelineConfig returns the scheme listing pipeline settings.
func (c Config) PipelineConfig() pipeline.Config {
	pc := pipeline.DefaultConfig(c.Listing.URL)
	pc.PageSize = c.Listing.PageSize
	return pc
}

// LoggingConfig returns the logger settings. Output goes to stderr.
func (c Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  logging.LogLevel(c.Log.Level),
		Pretty: c.Log.Pretty,
		Output: os.Stderr,
	}
}
