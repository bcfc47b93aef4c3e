package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogHealthProvider implements CatalogHealthProvider with
// direct queries against the products and sales tables. The counts
// mirror the dashboard definitions so both surfaces report the same
// numbers.
type GormCatalogHealthProvider struct {
	db *gorm.DB
}

// NewGormCatalogHealthProvider creates a new GormCatalogHealthProvider.
func NewGormCatalogHealthProvider(db *gorm.DB) *GormCatalogHealthProvider {
	return &GormCatalogHealthProvider{db: db}
}

// GetLowStockCount returns the number of active products at or below
// their low-stock threshold.
func (p *GormCatalogHealthProvider) GetLowStockCount(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("store_id = ? AND status = ?", storeID, "active").
		Where("low_stock_threshold > 0 AND stock_quantity <= low_stock_threshold").
		Count(&count).Error

	return count, err
}

// GetPendingDeliveryCount returns delivery sales still in flight.
func (p *GormCatalogHealthProvider) GetPendingDeliveryCount(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("sales").
		Where("store_id = ? AND delivery_type = ?", storeID, "delivery").
		Where("delivery_status IN ?", []string{"pending", "processing", "shipped"}).
		Count(&count).Error

	return count, err
}

// GormStoreProvider implements StoreProvider using GORM.
type GormStoreProvider struct {
	db *gorm.DB
}

// NewGormStoreProvider creates a new GormStoreProvider.
func NewGormStoreProvider(db *gorm.DB) *GormStoreProvider {
	return &GormStoreProvider{db: db}
}

// GetActiveStoreIDs returns all active store IDs.
func (p *GormStoreProvider) GetActiveStoreIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("stores").
		Select("id").
		Where("status = ?", "active").
		Find(&ids).Error

	return ids, err
}
