package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForStore finds a product by ID within a store
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU within a store
	FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*Product, error)

	// FindByBarcode finds a product by its barcode within a store
	FindByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*Product, error)

	// FindAllForStore finds all products for a store matching the filter.
	// Filter.Search matches name and SKU; Filters["category"] and
	// Filters["status"] narrow the result.
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindActiveForStore finds all active products for a store
	FindActiveForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindByIDs finds multiple products by their IDs within a store
	FindByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]Product, error)

	// FindLowStock finds active products at or below their low stock threshold
	FindLowStock(ctx context.Context, storeID uuid.UUID) ([]Product, error)

	// ListCategories returns the distinct non-empty categories of a store
	ListCategories(ctx context.Context, storeID uuid.UUID) ([]string, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product within a store
	Delete(ctx context.Context, storeID, id uuid.UUID) error

	// CountForStore counts products for a store matching the filter
	CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsBySKU checks if a product with the given SKU exists in the store
	ExistsBySKU(ctx context.Context, storeID uuid.UUID, sku string) (bool, error)

	// DecrementStock atomically decrements stock for a product, refusing to
	// go below zero. Returns shared.ErrInsufficientStock when the product
	// does not have the requested quantity. Must run inside the
	// settlement transaction.
	DecrementStock(ctx context.Context, storeID, productID uuid.UUID, quantity int64) error
}
