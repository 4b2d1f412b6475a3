package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheUnavailable wraps any failure of the cache backend. Callers that treat
// the cache as best-effort check for it with errors.Is and fall back to the store.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache is the contract of the cache layer so Redis can be swapped out in tests.
type Cache interface {
	// Get reads key into dest.
	//   - (true, nil): hit, dest is populated
	//   - (false, nil): key absent, dest untouched
	//   - (false, err): backend failure, must not be read as "absent"
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value with a TTL. Strings are stored verbatim, everything else as JSON.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
