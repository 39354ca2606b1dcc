// Package cache persists the last successfully fetched listing so the
// pipeline can show something before (and instead of) the network.
//
// Entries are never expired: the pipeline overwrites the single entry after
// every successful fetch and reads it at run start and on failure. Three
// backends implement Store:
//
//   - MemoryStore: process-local, used by tests and the CLI default
//   - RedisStore: shared across service replicas
//   - SQLiteStore: a durable file under the configured data directory
//
// # Basic Usage
//
//	store, err := cache.Open(ctx, cache.Options{Backend: cache.BackendRedis, RedisAddr: "localhost:6379"})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	entry, err := store.Get(ctx, cache.DefaultKey)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// nothing cached yet
//	}
//
//	err = store.Put(ctx, cache.DefaultKey, cache.NewEntry(items, total))
//
// # Metrics
//
//   - krishi_cache_hits_total{backend}
//   - krishi_cache_misses_total{backend}
//   - krishi_cache_size_bytes{backend}
//   - krishi_cache_errors_total{backend,operation}
//
// Storage failures are reported to the caller, which is expected to log
// them and carry on as if the cache were empty.
package cache
