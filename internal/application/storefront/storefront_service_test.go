package storefront

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCatalogCache is an in-test CatalogCache that counts operations
type fakeCatalogCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	sets    int
}

func newFakeCatalogCache() *fakeCatalogCache {
	return &fakeCatalogCache{entries: make(map[string][]byte)}
}

func (c *fakeCatalogCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	value, ok := c.entries[key]
	return value, ok, nil
}

func (c *fakeCatalogCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	return nil
}

func (c *fakeCatalogCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCatalogCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *fakeCatalogCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MockStoreRepository is a mock implementation of identity.StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Store), args.Error(1)
}

func (m *MockStoreRepository) FindBySlug(ctx context.Context, slug string) (*identity.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*identity.Store, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Store), args.Error(1)
}

func (m *MockStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Store, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Store), args.Error(1)
}

func (m *MockStoreRepository) Save(ctx context.Context, store *identity.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoreRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, storeID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*catalog.Product, error) {
	args := m.Called(ctx, storeID, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindActiveForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, storeID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, storeID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ListCategories(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	args := m.Called(ctx, storeID, id)
	return args.Error(0)
}

func (m *MockProductRepository) CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, storeID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, storeID, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, storeID, productID uuid.UUID, quantity int64) error {
	args := m.Called(ctx, storeID, productID, quantity)
	return args.Error(0)
}

func newTestStore(t *testing.T) *identity.Store {
	t.Helper()
	store, err := identity.NewStore(uuid.New(), "lagos-gadgets", "Lagos Gadgets")
	require.NoError(t, err)
	return store
}

func newTestProduct(t *testing.T, storeID uuid.UUID, name string, stock int64) catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(storeID, "SKU-"+name, name, decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, product.AdjustStock(stock))
	return *product
}

func TestStorefrontService_GetStorefront(t *testing.T) {
	storeRepo := new(MockStoreRepository)
	productRepo := new(MockProductRepository)
	cache := newFakeCatalogCache()
	service := NewStorefrontService(storeRepo, productRepo, cache, zap.NewNop())
	store := newTestStore(t)
	product := newTestProduct(t, store.ID, "Speaker", 5)

	storeRepo.On("FindBySlug", mock.Anything, store.Slug).Return(store, nil)
	productRepo.On("FindActiveForStore", mock.Anything, store.ID, mock.Anything).
		Return([]catalog.Product{product}, nil)
	productRepo.On("CountForStore", mock.Anything, store.ID, mock.Anything).Return(int64(1), nil)
	productRepo.On("ListCategories", mock.Anything, store.ID).Return([]string{"Electronics"}, nil)

	response, err := service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{})

	require.NoError(t, err)
	assert.Equal(t, "Lagos Gadgets", response.Store.Name)
	assert.Equal(t, "NGN", response.Store.Currency)
	require.Len(t, response.Products, 1)
	assert.Equal(t, "Speaker", response.Products[0].Name)
	assert.Equal(t, int64(5), response.Products[0].StockQuantity)
	assert.Equal(t, []string{"Electronics"}, response.Categories)
	assert.Equal(t, int64(1), response.Total)
	assert.Equal(t, 1, cache.sets)
}

func TestStorefrontService_SecondReadServedFromCache(t *testing.T) {
	storeRepo := new(MockStoreRepository)
	productRepo := new(MockProductRepository)
	cache := newFakeCatalogCache()
	service := NewStorefrontService(storeRepo, productRepo, cache, zap.NewNop())
	store := newTestStore(t)

	storeRepo.On("FindBySlug", mock.Anything, store.Slug).Return(store, nil).Once()
	productRepo.On("FindActiveForStore", mock.Anything, store.ID, mock.Anything).
		Return([]catalog.Product{}, nil).Once()
	productRepo.On("CountForStore", mock.Anything, store.ID, mock.Anything).Return(int64(0), nil).Once()
	productRepo.On("ListCategories", mock.Anything, store.ID).Return([]string{}, nil).Once()

	_, err := service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{})
	require.NoError(t, err)

	// The mocks only allow one DB round trip; a second call must hit the cache
	response, err := service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Lagos Gadgets", response.Store.Name)
	storeRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestStorefrontService_InvalidateStoreDropsCachedPages(t *testing.T) {
	storeRepo := new(MockStoreRepository)
	productRepo := new(MockProductRepository)
	cache := newFakeCatalogCache()
	service := NewStorefrontService(storeRepo, productRepo, cache, zap.NewNop())
	store := newTestStore(t)

	storeRepo.On("FindBySlug", mock.Anything, store.Slug).Return(store, nil)
	storeRepo.On("FindByID", mock.Anything, store.ID).Return(store, nil)
	productRepo.On("FindActiveForStore", mock.Anything, store.ID, mock.Anything).
		Return([]catalog.Product{}, nil)
	productRepo.On("CountForStore", mock.Anything, store.ID, mock.Anything).Return(int64(0), nil)
	productRepo.On("ListCategories", mock.Anything, store.ID).Return([]string{}, nil)

	_, err := service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{})
	require.NoError(t, err)
	_, err = service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{Page: 2})
	require.NoError(t, err)
	require.Equal(t, 2, cache.len())

	require.NoError(t, service.InvalidateStore(context.Background(), store.ID))
	assert.Equal(t, 0, cache.len())
}

func TestStorefrontService_InactiveStore(t *testing.T) {
	storeRepo := new(MockStoreRepository)
	service := NewStorefrontService(storeRepo, new(MockProductRepository), newFakeCatalogCache(), zap.NewNop())
	store := newTestStore(t)
	require.NoError(t, store.Deactivate())

	storeRepo.On("FindBySlug", mock.Anything, store.Slug).Return(store, nil)

	_, err := service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStorefrontService_QueryVariantsCachedSeparately(t *testing.T) {
	storeRepo := new(MockStoreRepository)
	productRepo := new(MockProductRepository)
	cache := newFakeCatalogCache()
	service := NewStorefrontService(storeRepo, productRepo, cache, zap.NewNop())
	store := newTestStore(t)

	storeRepo.On("FindBySlug", mock.Anything, store.Slug).Return(store, nil)
	productRepo.On("FindActiveForStore", mock.Anything, store.ID, mock.Anything).
		Return([]catalog.Product{}, nil)
	productRepo.On("CountForStore", mock.Anything, store.ID, mock.Anything).Return(int64(0), nil)
	productRepo.On("ListCategories", mock.Anything, store.ID).Return([]string{}, nil)

	_, err := service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{Category: "Electronics"})
	require.NoError(t, err)
	_, err = service.GetStorefront(context.Background(), store.Slug, StorefrontQuery{Search: "speaker"})
	require.NoError(t, err)

	assert.Equal(t, 2, cache.len())
}
