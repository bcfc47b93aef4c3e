package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/domain/tax"
	"gorm.io/gorm"
)

// GormTaxPeriodRepository implements PeriodRepository using GORM
type GormTaxPeriodRepository struct {
	db *gorm.DB
}

// NewGormTaxPeriodRepository creates a new GormTaxPeriodRepository
func NewGormTaxPeriodRepository(db *gorm.DB) *GormTaxPeriodRepository {
	return &GormTaxPeriodRepository{db: db}
}

// FindByID finds a period by ID
func (r *GormTaxPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Period, error) {
	var period tax.Period
	if err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindByIDForStore finds a period by ID within a store
func (r *GormTaxPeriodRepository) FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*tax.Period, error) {
	var period tax.Period
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindAllForStore lists a store's periods, newest start date first
func (r *GormTaxPeriodRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID) ([]tax.Period, error) {
	var periods []tax.Period
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("start_date DESC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindOverlapping finds periods whose date range intersects the given range
func (r *GormTaxPeriodRepository) FindOverlapping(ctx context.Context, storeID uuid.UUID, period *tax.Period, excludeID uuid.UUID) ([]tax.Period, error) {
	query := r.db.WithContext(ctx).
		Where("store_id = ? AND start_date <= ? AND end_date >= ?",
			storeID, period.EndDate, period.StartDate)
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}

	var periods []tax.Period
	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// Save creates or updates a period
func (r *GormTaxPeriodRepository) Save(ctx context.Context, period *tax.Period) error {
	return r.db.WithContext(ctx).Save(period).Error
}

// Delete deletes a period
func (r *GormTaxPeriodRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&tax.Period{}, "store_id = ? AND id = ?", storeID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormTaxPeriodRepository implements PeriodRepository
var _ tax.PeriodRepository = (*GormTaxPeriodRepository)(nil)
