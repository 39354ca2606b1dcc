package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by backend
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishi_cache_hits_total",
			Help: "Total number of listing cache hits",
		},
		[]string{"backend"}, // "memory", "redis", "sqlite"
	)

	// CacheMisses tracks cache misses by backend
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishi_cache_misses_total",
			Help: "Total number of listing cache misses",
		},
		[]string{"backend"},
	)

	// CacheSize tracks the size of the last written entry in bytes
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "krishi_cache_size_bytes",
			Help: "Size of the last written listing cache entry in bytes",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishi_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"backend", "operation"}, // "get", "put", "ping"
	)
)
