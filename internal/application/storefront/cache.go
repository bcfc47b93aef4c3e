package storefront

import (
	"context"
	"time"
)

// CatalogCache caches rendered storefront payloads keyed by store slug.
// Implementations must be safe for concurrent use.
type CatalogCache interface {
	// Get returns the cached payload for key, with found=false on a miss
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload under key for the given TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single cached entry
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every cached entry whose key starts with prefix.
	// Used to invalidate a store's whole storefront after catalog changes.
	DeletePrefix(ctx context.Context, prefix string) error
}

// NoOpCatalogCache is a CatalogCache that caches nothing.
// Used when caching is disabled in configuration.
type NoOpCatalogCache struct{}

// NewNoOpCatalogCache creates a new NoOpCatalogCache
func NewNoOpCatalogCache() *NoOpCatalogCache {
	return &NoOpCatalogCache{}
}

var _ CatalogCache = (*NoOpCatalogCache)(nil)

func (c *NoOpCatalogCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NoOpCatalogCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (c *NoOpCatalogCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NoOpCatalogCache) DeletePrefix(ctx context.Context, prefix string) error {
	return nil
}
