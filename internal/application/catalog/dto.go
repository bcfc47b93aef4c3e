package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/catalog"
)

// CreateProductRequest contains the input for creating a product
type CreateProductRequest struct {
	SKU               string
	Name              string
	Description       string
	Category          string
	Barcode           string
	Price             decimal.Decimal
	StockQuantity     int64
	LowStockThreshold int64
}

// UpdateProductRequest contains the input for updating a product
type UpdateProductRequest struct {
	Name              string
	Description       string
	Category          string
	Barcode           string
	Price             *decimal.Decimal
	LowStockThreshold *int64
}

// AdjustStockRequest contains the input for a manual stock correction
type AdjustStockRequest struct {
	Delta  int64
	Reason string
}

// ProductListFilter contains filter options for listing products
type ProductListFilter struct {
	Search   string
	Category string
	Status   string
	Page     int
	PageSize int
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	StoreID           uuid.UUID       `json:"store_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Category          string          `json:"category,omitempty"`
	Barcode           string          `json:"barcode,omitempty"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int64           `json:"stock_quantity"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	ImageURL          string          `json:"image_url,omitempty"`
	Status            string          `json:"status"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToProductResponse maps a domain product to its API representation.
// ImageURL is filled in separately when image storage is configured.
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                product.ID,
		StoreID:           product.StoreID,
		SKU:               product.SKU,
		Name:              product.Name,
		Description:       product.Description,
		Category:          product.Category,
		Barcode:           product.Barcode,
		Price:             product.Price,
		StockQuantity:     product.StockQuantity,
		LowStockThreshold: product.LowStockThreshold,
		LowStock:          product.IsLowStock(),
		Status:            string(product.Status),
		Version:           product.Version,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

// ProductListResult contains a page of products
type ProductListResult struct {
	Products   []ProductResponse `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// InitiateImageUploadRequest contains the input for requesting an image upload URL
type InitiateImageUploadRequest struct {
	FileName    string
	ContentType string
	FileSize    int64
}

// InitiateImageUploadResponse contains the presigned upload URL
type InitiateImageUploadResponse struct {
	ImageKey  string    `json:"image_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
