package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/storelink/backend/internal/application/storefront"
)

// InMemoryCatalogCache implements CatalogCache with a process-local map.
// Suitable for single-instance deployments and testing.
// WARNING: Entries are not shared across process instances, so multi-instance
// deployments may serve stale storefronts after catalog changes.
type InMemoryCatalogCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryCacheEntry
}

type inMemoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

var _ storefront.CatalogCache = (*InMemoryCatalogCache)(nil)

// NewInMemoryCatalogCache creates a new InMemoryCatalogCache
func NewInMemoryCatalogCache() *InMemoryCatalogCache {
	return &InMemoryCatalogCache{
		entries: make(map[string]inMemoryCacheEntry),
	}
}

// Get returns the cached payload for key, with found=false on a miss.
// Expired entries are removed lazily.
func (c *InMemoryCatalogCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, errors.New("cache key cannot be empty")
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores a payload under key for the given TTL
func (c *InMemoryCatalogCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("cache TTL must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = inMemoryCacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a single cached entry
func (c *InMemoryCatalogCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// DeletePrefix removes every cached entry whose key starts with prefix
func (c *InMemoryCatalogCache) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("cache prefix cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}

	return nil
}

// Len returns the number of live entries. Used by tests.
func (c *InMemoryCatalogCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
