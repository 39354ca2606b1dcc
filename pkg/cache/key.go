package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DefaultKeyName is the storage key of the listing cache.
const DefaultKeyName = "schemes_cache_v1"

var (
	// DefaultKey holds the entry written by the listing pipeline.
	DefaultKey = Key{Name: DefaultKeyName}

	// SnapshotKey holds the all-pages snapshot written by a sync.
	SnapshotKey = Key{Name: DefaultKeyName, Params: url.Values{"scope": []string{"all"}}}
)

// Key identifies a cache entry.
type Key struct {
	// Name is the base key (e.g., "schemes_cache_v1")
	Name string

	// Params qualify the key (e.g., {"scope": "all"})
	Params url.Values
}

// String generates a deterministic key string.
// Format: name:param1=val1:param2=val2
//
// Example:
//
//	schemes_cache_v1:scope=all
func (k Key) String() string {
	parts := []string{strings.TrimSpace(k.Name)}

	// Params sorted for determinism
	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
