// Package cache provides response caching for the care data service.
//
// Successful remote responses are cached per normalized scientific name so
// that regenerating a card does not re-issue a slow (5-30s) remote call.
// Three backends are provided:
//   - FileCache: hash-sharded JSON files under the XDG cache dir (default)
//   - RedisCache: shared cache for multi-instance serve deployments
//   - NullCache: disables caching (tests, --no-cache)
package cache

import (
	"context"
	"time"
)

// TTLResponse is how long fetched care data stays cached. Care guidance is
// static; the TTL mainly bounds growth of the cache directory.
const TTLResponse = 30 * 24 * time.Hour

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResponseKey builds the cache key for a plant's fetched care data.
func ResponseKey(scientificName string) string {
	return "care:" + Hash([]byte(normalizeKey(scientificName)))
}
