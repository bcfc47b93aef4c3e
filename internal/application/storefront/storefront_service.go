package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultCacheTTL keeps storefront pages fresh enough for stock displays
// while absorbing repeat reads. Product mutations invalidate eagerly, so
// the TTL only bounds staleness from direct DB edits.
const DefaultCacheTTL = 60 * time.Second

// ProductImageResolver resolves a product's public image URL. Implemented
// by the catalog image service; nil disables images on the storefront.
type ProductImageResolver interface {
	ImageURL(ctx context.Context, product *catalog.Product) string
}

// StorefrontQuery narrows and paginates the public product listing
type StorefrontQuery struct {
	Page     int
	PageSize int
	Category string
	Search   string
}

// StorefrontStore is the public profile of a store
type StorefrontStore struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Currency     string `json:"currency"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
}

// StorefrontProduct is a purchasable product as shown to the public.
// Internal fields like barcode, thresholds and version are not exposed.
type StorefrontProduct struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
}

// StorefrontResponse is the full public storefront page
type StorefrontResponse struct {
	Store      StorefrontStore     `json:"store"`
	Products   []StorefrontProduct `json:"products"`
	Categories []string            `json:"categories"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

// StorefrontService serves the unauthenticated public storefront with a
// cache-aside read path: repeat reads of the same page are served from
// the cache without touching the database. Every product mutation in the
// catalog invalidates the store's cached pages.
type StorefrontService struct {
	storeRepo     identity.StoreRepository
	productRepo   catalog.ProductRepository
	cache         CatalogCache
	imageResolver ProductImageResolver
	ttl           time.Duration
	logger        *zap.Logger
}

// StorefrontServiceOption configures a StorefrontService
type StorefrontServiceOption func(*StorefrontService)

// WithCacheTTL overrides the storefront cache TTL
func WithCacheTTL(ttl time.Duration) StorefrontServiceOption {
	return func(s *StorefrontService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithImageResolver enables product image URLs on the storefront
func WithImageResolver(resolver ProductImageResolver) StorefrontServiceOption {
	return func(s *StorefrontService) {
		s.imageResolver = resolver
	}
}

// NewStorefrontService creates a new StorefrontService. A nil cache
// degrades to direct reads.
func NewStorefrontService(
	storeRepo identity.StoreRepository,
	productRepo catalog.ProductRepository,
	cache CatalogCache,
	logger *zap.Logger,
	opts ...StorefrontServiceOption,
) *StorefrontService {
	if cache == nil {
		cache = &NoOpCatalogCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &StorefrontService{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		cache:       cache,
		ttl:         DefaultCacheTTL,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStorefront returns a store's public page: profile, in-stock active
// products and the category list.
func (s *StorefrontService) GetStorefront(ctx context.Context, slug string, query StorefrontQuery) (*StorefrontResponse, error) {
	query = normalizeQuery(query)
	cacheKey := s.cacheKey(slug, query)

	if cached, hit, err := s.cache.Get(ctx, cacheKey); err == nil && hit {
		var response StorefrontResponse
		if err := json.Unmarshal(cached, &response); err == nil {
			return &response, nil
		}
		// A corrupt entry falls through to a rebuild
		_ = s.cache.Delete(ctx, cacheKey)
	} else if err != nil {
		s.logger.Warn("Storefront cache read failed", zap.String("slug", slug), zap.Error(err))
	}

	response, err := s.buildStorefront(ctx, slug, query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(response); err == nil {
		if err := s.cache.Set(ctx, cacheKey, payload, s.ttl); err != nil {
			s.logger.Warn("Storefront cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	return response, nil
}

// InvalidateStore drops every cached storefront page for the store.
// Implements the invalidation hook the catalog service calls on product
// mutation.
func (s *StorefrontService) InvalidateStore(ctx context.Context, storeID uuid.UUID) error {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.cache.DeletePrefix(ctx, s.slugPrefix(store.Slug))
}

// InvalidateSlug drops the cached pages for a slug directly, without a
// store lookup
func (s *StorefrontService) InvalidateSlug(ctx context.Context, slug string) error {
	return s.cache.DeletePrefix(ctx, s.slugPrefix(slug))
}

func (s *StorefrontService) buildStorefront(ctx context.Context, slug string, query StorefrontQuery) (*StorefrontResponse, error) {
	store, err := s.storeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !store.IsActive() {
		return nil, shared.ErrNotFound
	}

	filter := shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   query.Search,
		Filters:  map[string]interface{}{"in_stock": true},
	}
	if query.Category != "" {
		filter.Filters["category"] = query.Category
	}

	products, err := s.productRepo.FindActiveForStore(ctx, store.ID, filter)
	if err != nil {
		return nil, err
	}
	totalFilter := filter
	totalFilter.Filters = map[string]interface{}{"in_stock": true, "status": string(catalog.ProductStatusActive)}
	if query.Category != "" {
		totalFilter.Filters["category"] = query.Category
	}
	total, err := s.productRepo.CountForStore(ctx, store.ID, totalFilter)
	if err != nil {
		return nil, err
	}
	categories, err := s.productRepo.ListCategories(ctx, store.ID)
	if err != nil {
		return nil, err
	}

	publicProducts := make([]StorefrontProduct, 0, len(products))
	for i := range products {
		product := &products[i]
		entry := StorefrontProduct{
			ID:            product.ID,
			Name:          product.Name,
			Description:   product.Description,
			Category:      product.Category,
			Price:         product.Price,
			StockQuantity: product.StockQuantity,
		}
		if s.imageResolver != nil {
			entry.ImageURL = s.imageResolver.ImageURL(ctx, product)
		}
		publicProducts = append(publicProducts, entry)
	}

	return &StorefrontResponse{
		Store: StorefrontStore{
			Slug:         store.Slug,
			Name:         store.Name,
			Description:  store.Description,
			Currency:     store.Currency,
			ContactPhone: store.ContactPhone,
			Address:      store.Address,
			LogoURL:      store.LogoURL,
		},
		Products:   publicProducts,
		Categories: categories,
		Total:      total,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}, nil
}

func (s *StorefrontService) slugPrefix(slug string) string {
	return "store:" + slug + ":"
}

func (s *StorefrontService) cacheKey(slug string, query StorefrontQuery) string {
	return fmt.Sprintf("%sp%d:s%d:c%s:q%s", s.slugPrefix(slug), query.Page, query.PageSize, query.Category, query.Search)
}

func normalizeQuery(query StorefrontQuery) StorefrontQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}
	return query
}
