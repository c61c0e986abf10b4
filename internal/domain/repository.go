package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RelayFetcher retrieves a target URL through a relay.
// A returned error means a transport-level failure; HTTP statuses are reported in the response.
type RelayFetcher interface {
	Fetch(ctx context.Context, relay Relay, targetURL string) (*RelayResponse, error)
}
