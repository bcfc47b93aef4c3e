package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/sales"
)

// SaleLineRequest is one line of an intended purchase. Only the product id
// and quantity are accepted; prices always come from the catalog.
type SaleLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// GuestCheckoutRequest settles an online sale for an unauthenticated buyer
type GuestCheckoutRequest struct {
	Items           []SaleLineRequest   `json:"items" binding:"required,min=1"`
	CustomerName    string              `json:"customer_name" binding:"required"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerEmail   string              `json:"customer_email"`
	PaymentMethod   sales.PaymentMethod `json:"payment_method" binding:"required"`
	DeliveryType    sales.DeliveryType  `json:"delivery_type" binding:"required"`
	DeliveryAddress string              `json:"delivery_address"`
}

// AccountCheckoutRequest settles an online sale and creates the buyer's
// customer account in the same transaction
type AccountCheckoutRequest struct {
	Items           []SaleLineRequest   `json:"items" binding:"required,min=1"`
	Email           string              `json:"email" binding:"required,email"`
	Password        string              `json:"password" binding:"required,min=8"`
	DisplayName     string              `json:"display_name" binding:"required"`
	Phone           string              `json:"phone"`
	PaymentMethod   sales.PaymentMethod `json:"payment_method" binding:"required"`
	DeliveryType    sales.DeliveryType  `json:"delivery_type" binding:"required"`
	DeliveryAddress string              `json:"delivery_address"`
}

// POSSaleRequest settles an in-store sale rung up by staff. Customer
// attribution is optional: walk-ins leave every customer field empty.
type POSSaleRequest struct {
	Items           []SaleLineRequest   `json:"items" binding:"required,min=1"`
	CustomerID      *uuid.UUID          `json:"customer_id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerEmail   string              `json:"customer_email"`
	PaymentMethod   sales.PaymentMethod `json:"payment_method" binding:"required"`
	DeliveryType    sales.DeliveryType  `json:"delivery_type"`
	DeliveryAddress string              `json:"delivery_address"`
}

// UpdateDeliveryRequest advances a delivery sale's fulfilment status
type UpdateDeliveryRequest struct {
	Status sales.DeliveryStatus `json:"status" binding:"required"`
}

// SaleListFilter narrows and paginates a store's sale listing
type SaleListFilter struct {
	From          *time.Time
	To            *time.Time
	Channel       string
	PaymentMethod string
	Page          int
	PageSize      int
}

// SaleItemResponse is one immutable line of a settled sale
type SaleItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse is a settled sale in API shape
type SaleResponse struct {
	ID              uuid.UUID          `json:"id"`
	DisplayCode     string             `json:"display_code"`
	StoreID         uuid.UUID          `json:"store_id"`
	CustomerID      *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName    string             `json:"customer_name,omitempty"`
	CustomerPhone   string             `json:"customer_phone,omitempty"`
	CustomerEmail   string             `json:"customer_email,omitempty"`
	Channel         string             `json:"channel"`
	PaymentMethod   string             `json:"payment_method"`
	DeliveryType    string             `json:"delivery_type"`
	DeliveryStatus  string             `json:"delivery_status,omitempty"`
	DeliveryAddress string             `json:"delivery_address,omitempty"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	VATRate         decimal.Decimal    `json:"vat_rate"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	Total           decimal.Decimal    `json:"total"`
	Items           []SaleItemResponse `json:"items"`
	SoldByUserID    *uuid.UUID         `json:"sold_by_user_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ToSaleResponse converts a domain sale to its API shape
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}

	return SaleResponse{
		ID:              sale.ID,
		DisplayCode:     sale.DisplayCode,
		StoreID:         sale.StoreID,
		CustomerID:      sale.Customer.CustomerID,
		CustomerName:    sale.Customer.Name,
		CustomerPhone:   sale.Customer.Phone,
		CustomerEmail:   sale.Customer.Email,
		Channel:         string(sale.Channel),
		PaymentMethod:   string(sale.PaymentMethod),
		DeliveryType:    string(sale.DeliveryType),
		DeliveryStatus:  string(sale.DeliveryStatus),
		DeliveryAddress: sale.DeliveryAddress,
		Subtotal:        sale.Subtotal,
		VATRate:         sale.VATRate,
		TaxAmount:       sale.TaxAmount,
		Total:           sale.Total,
		Items:           items,
		SoldByUserID:    sale.SoldByUserID,
		CreatedAt:       sale.CreatedAt,
	}
}

// AccountCheckoutResult is a settled sale plus the account created for it
type AccountCheckoutResult struct {
	Sale      SaleResponse `json:"sale"`
	UserID    uuid.UUID    `json:"user_id"`
	UserEmail string       `json:"user_email"`
}

// SaleListResult is a page of sales
type SaleListResult struct {
	Sales    []SaleResponse `json:"sales"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
