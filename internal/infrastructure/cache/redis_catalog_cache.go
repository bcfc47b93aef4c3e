// Package cache provides caching implementations for the public storefront.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storelink/backend/internal/application/storefront"
)

// RedisCatalogCache implements CatalogCache using Redis.
// This is suitable for distributed deployments where multiple instances
// need to share cached storefront payloads.
type RedisCatalogCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

var _ storefront.CatalogCache = (*RedisCatalogCache)(nil)

// NewRedisCatalogCache creates a new Redis-based storefront cache
func NewRedisCatalogCache(cfg RedisConfig) (*RedisCatalogCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCatalogCache{
		client:    client,
		keyPrefix: "storefront:",
	}, nil
}

// NewRedisCatalogCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisCatalogCacheWithClient(client *redis.Client, keyPrefix string) *RedisCatalogCache {
	if keyPrefix == "" {
		keyPrefix = "storefront:"
	}
	return &RedisCatalogCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload for key, with found=false on a miss
func (c *RedisCatalogCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, errors.New("cache key cannot be empty")
	}

	value, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return value, true, nil
}

// Set stores a payload under key for the given TTL
func (c *RedisCatalogCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("cache TTL must be positive")
	}

	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Delete removes a single cached entry
func (c *RedisCatalogCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// DeletePrefix removes every cached entry whose key starts with prefix.
// Uses SCAN rather than KEYS to avoid blocking Redis on large keyspaces.
func (c *RedisCatalogCache) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("cache prefix cannot be empty")
	}

	pattern := c.keyPrefix + prefix + "*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache entries: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache entries: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete cache entries: %w", err)
		}
	}

	return nil
}

// Close closes the underlying Redis connection
func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}
