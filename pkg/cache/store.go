package cache

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a key/value home for listing entries.
type Store interface {
	// Get returns the entry under key, or ErrCacheMiss.
	Get(ctx context.Context, key Key) (*Entry, error)

	// Put overwrites the entry under key.
	Put(ctx context.Context, key Key, entry *Entry) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend Backend

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SQLite data directory, or ":memory:"
	SQLiteDir string
}

// Open creates the configured store and verifies it is reachable.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendRedis:
		store := NewRedisStoreFromOptions(opts)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect redis %s: %w", opts.RedisAddr, err)
		}
		return store, nil
	case BackendSQLite:
		return OpenSQLiteStore(ctx, opts.SQLiteDir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
