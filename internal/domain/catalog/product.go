package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a product/SKU in a store's catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.StoreAggregateRoot
	SKU               string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_store_sku,priority:2"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Category          string          `gorm:"type:varchar(100);index"`
	Barcode           string          `gorm:"type:varchar(50);index"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQuantity     int64           `gorm:"not null;default:0"`
	LowStockThreshold int64           `gorm:"not null;default:0"`
	ImageKey          string          `gorm:"type:varchar(500)"` // Object key in the image bucket
	Status            ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(storeID uuid.UUID, sku, name string, price decimal.Decimal) (*Product, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store cannot be empty")
	}
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &Product{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		SKU:                strings.ToUpper(strings.TrimSpace(sku)),
		Name:               strings.TrimSpace(name),
		Price:              price,
		Status:             ProductStatusActive,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description, category string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Category = strings.TrimSpace(category)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetPrice sets the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetBarcode sets the product barcode
func (p *Product) SetBarcode(barcode string) error {
	if barcode != "" && len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}
	p.Barcode = strings.TrimSpace(barcode)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetImageKey records the object key of the uploaded product image
func (p *Product) SetImageKey(key string) error {
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_IMAGE_KEY", "Image key cannot exceed 500 characters")
	}
	p.ImageKey = key
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetLowStockThreshold sets the stock level below which the product is
// flagged on the dashboard
func (p *Product) SetLowStockThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AdjustStock applies a manual stock correction. The delta may be negative
// but the resulting quantity may not be.
func (p *Product) AdjustStock(delta int64) error {
	next := p.StockQuantity + delta
	if next < 0 {
		return shared.ErrInsufficientStock
	}
	p.StockQuantity = next
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Activate makes the product visible and sellable
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate hides the product from the storefront and blocks new sales
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsLowStock returns true when stock is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.LowStockThreshold > 0 && p.StockQuantity <= p.LowStockThreshold
}

// InStock returns true if at least the requested quantity is available
func (p *Product) InStock(quantity int64) bool {
	return p.StockQuantity >= quantity
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		isValid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_'
		if !isValid {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
