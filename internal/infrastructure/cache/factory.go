package cache

import (
	"fmt"

	"github.com/storelink/backend/internal/application/storefront"
	"github.com/storelink/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CatalogCacheFactory creates storefront caches based on configuration
type CatalogCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CatalogCacheFactoryOption is a functional option for configuring the factory
type CatalogCacheFactoryOption func(*CatalogCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCatalogCacheFactory creates a new factory
func NewCatalogCacheFactory(cfg config.RedisConfig, opts ...CatalogCacheFactoryOption) *CatalogCacheFactory {
	f := &CatalogCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed storefront cache
func (f *CatalogCacheFactory) CreateRedisCache() (storefront.CatalogCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisCatalogCache(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis storefront cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates a process-local storefront cache
func (f *CatalogCacheFactory) CreateInMemoryCache() storefront.CatalogCache {
	return NewInMemoryCatalogCache()
}

// CreateCache creates a storefront cache based on whether Redis is available.
// It tries Redis first and falls back to in-memory when allowed.
func (f *CatalogCacheFactory) CreateCache() (storefront.CatalogCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis storefront cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for storefront cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory storefront cache. "+
		"Multi-instance deployments may serve stale storefronts after catalog changes.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
