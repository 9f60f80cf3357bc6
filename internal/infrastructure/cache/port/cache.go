package port

import (
	"context"
	"time"
)

// Cache is the small key-value store behind presence bookkeeping (the
// last-seen timestamps written on socket disconnect). Values are plain
// strings; callers own serialization. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get fetches the value for key. Misses are reported as ErrMiss so
	// callers can tell "never seen" apart from transport failures.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative ttl means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and returns how many were removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the backend.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}

// ErrMiss signals that a key is absent, as opposed to the cache being
// unreachable.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
