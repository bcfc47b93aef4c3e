package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/cart"
	"github.com/storelink/backend/internal/domain/catalog"
)

// CartLineRequest is one product line in a cart replacement
type CartLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// ReplaceCartRequest replaces the user's cart wholesale
type ReplaceCartRequest struct {
	StoreID uuid.UUID         `json:"store_id" binding:"required"`
	Items   []CartLineRequest `json:"items"`
}

// CartItemResponse is a cart line joined with live product data. Price and
// stock reflect the catalog at read time, not at the time the line was added.
type CartItemResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	ProductName   string          `json:"product_name"`
	SKU           string          `json:"sku"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	StockQuantity int64           `json:"stock_quantity"`
	Available     bool            `json:"available"`
}

// CartResponse is the user's cart with live product data joined in
type CartResponse struct {
	StoreID       uuid.UUID          `json:"store_id"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int64              `json:"total_quantity"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// EmptyCartResponse returns the response for a user without a cart
func EmptyCartResponse() *CartResponse {
	return &CartResponse{
		Items:    make([]CartItemResponse, 0),
		Subtotal: decimal.Zero,
	}
}

func toCartResponse(c *cart.Cart, products map[uuid.UUID]catalog.Product) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	subtotal := decimal.Zero
	for _, item := range c.Items {
		line := CartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if product, ok := products[item.ProductID]; ok {
			line.ProductName = product.Name
			line.SKU = product.SKU
			line.UnitPrice = product.Price
			line.LineTotal = product.Price.Mul(decimal.NewFromInt(item.Quantity))
			line.StockQuantity = product.StockQuantity
			line.Available = product.IsActive() && product.StockQuantity >= item.Quantity
			subtotal = subtotal.Add(line.LineTotal)
		} else {
			line.UnitPrice = decimal.Zero
			line.LineTotal = decimal.Zero
		}
		items = append(items, line)
	}

	return &CartResponse{
		StoreID:       c.StoreID,
		Items:         items,
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      subtotal,
		UpdatedAt:     c.UpdatedAt,
	}
}
