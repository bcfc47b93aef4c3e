package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleFilter contains filter options for querying sales
type SaleFilter struct {
	From          *time.Time
	To            *time.Time
	Channel       *Channel
	PaymentMethod *PaymentMethod
	DeliveryType  *DeliveryType

	// Pagination
	Page     int
	PageSize int
}

// NewSaleFilter creates a SaleFilter with default pagination
func NewSaleFilter() SaleFilter {
	return SaleFilter{
		Page:     1,
		PageSize: 20,
	}
}

// Offset returns the offset for pagination
func (f SaleFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the limit for pagination
func (f SaleFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// Create persists the sale header and its items. Must participate in
	// the ambient transaction when one is active on the context's DB
	// handle.
	Create(ctx context.Context, sale *Sale) error

	// UpdateDeliveryStatus persists a delivery status change with an
	// optimistic version check
	UpdateDeliveryStatus(ctx context.Context, sale *Sale) error

	// FindByID finds a sale with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForStore finds a sale by ID within a store
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Sale, error)

	// FindByDisplayCode finds a sale by its display code within a store
	FindByDisplayCode(ctx context.Context, storeID uuid.UUID, code string) (*Sale, error)

	// FindAllForStore lists a store's sales newest first
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)

	// FindByCustomer lists a customer's sales across stores
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)

	// ExistsByDisplayCode checks for a display code collision within a store
	ExistsByDisplayCode(ctx context.Context, storeID uuid.UUID, code string) (bool, error)
}
