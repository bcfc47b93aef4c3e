package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/sales"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create persists the sale header and its items. A display code taken by
// a concurrent transaction surfaces as ErrAlreadyExists so the caller can
// regenerate and retry.
func (r *GormSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateDeliveryStatus persists a delivery status change with an
// optimistic version check. The domain aggregate has already incremented
// its version, so the row must still hold the previous one.
func (r *GormSaleRepository) UpdateDeliveryStatus(ctx context.Context, sale *sales.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]interface{}{
			"delivery_status": sale.DeliveryStatus,
			"version":         sale.Version,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.SaleModel{}).
			Where("id = ?", sale.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForStore finds a sale by ID within a store
func (r *GormSaleRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDisplayCode finds a sale by its display code within a store
func (r *GormSaleRepository) FindByDisplayCode(ctx context.Context, storeID uuid.UUID, code string) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND display_code = ?", storeID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForStore lists a store's sales newest first
func (r *GormSaleRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("store_id = ?", storeID)
	query = r.applyFilter(query, filter)

	return r.findPage(query, filter)
}

// FindByCustomer lists a customer's sales across stores
func (r *GormSaleRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("customer_id = ?", customerID)
	query = r.applyFilter(query, filter)

	return r.findPage(query, filter)
}

// ExistsByDisplayCode checks for a display code collision within a store
func (r *GormSaleRepository) ExistsByDisplayCode(ctx context.Context, storeID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("store_id = ? AND display_code = ?", storeID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormSaleRepository) findPage(query *gorm.DB, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var saleModels []models.SaleModel
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&saleModels).Error; err != nil {
		return nil, 0, err
	}

	result := make([]sales.Sale, len(saleModels))
	for i := range saleModels {
		result[i] = *saleModels[i].ToDomain()
	}
	return result, total, nil
}

// applyFilter applies filter options to the query
func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Channel != nil {
		query = query.Where("channel = ?", *filter.Channel)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.DeliveryType != nil {
		query = query.Where("delivery_type = ?", *filter.DeliveryType)
	}
	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
