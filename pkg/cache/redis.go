package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis without expiry.
type RedisStore struct {
	redis *redis.Client
	owned bool
}

// NewRedisStore creates a store on an existing client. The caller keeps
// ownership of the client.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// NewRedisStoreFromOptions creates a store with its own client.
func NewRedisStoreFromOptions(opts Options) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})
	return &RedisStore{redis: client, owned: true}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(string(BackendRedis)).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(string(BackendRedis), "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		CacheErrors.WithLabelValues(string(BackendRedis), "get").Inc()
		return nil, err
	}

	CacheHits.WithLabelValues(string(BackendRedis)).Inc()
	return entry, nil
}

// Put implements Store. Entries are written without TTL.
func (s *RedisStore) Put(ctx context.Context, key Key, entry *Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		CacheErrors.WithLabelValues(string(BackendRedis), "put").Inc()
		return err
	}

	if err := s.redis.Set(ctx, key.String(), data, 0).Err(); err != nil {
		CacheErrors.WithLabelValues(string(BackendRedis), "put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues(string(BackendRedis)).Set(float64(len(data)))
	return nil
}

// Delete removes an entry.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues(string(BackendRedis), "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		CacheErrors.WithLabelValues(string(BackendRedis), "ping").Inc()
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close implements Store. A client passed to NewRedisStore is left open.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.redis.Close()
}
