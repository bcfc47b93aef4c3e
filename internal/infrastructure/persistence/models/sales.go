package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/sales"
	"github.com/storelink/backend/internal/domain/shared"
)

// SaleModel is the persistence model for the Sale aggregate.
type SaleModel struct {
	StoreAggregateModel
	DisplayCode     string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_store_code,priority:2"`
	CustomerID      *uuid.UUID           `gorm:"type:uuid;index"`
	CustomerName    string               `gorm:"type:varchar(200)"`
	CustomerPhone   string               `gorm:"type:varchar(50)"`
	CustomerEmail   string               `gorm:"type:varchar(200)"`
	Channel         sales.Channel        `gorm:"type:varchar(20);not null;index"`
	PaymentMethod   sales.PaymentMethod  `gorm:"type:varchar(20);not null"`
	DeliveryType    sales.DeliveryType   `gorm:"type:varchar(20);not null"`
	DeliveryStatus  sales.DeliveryStatus `gorm:"type:varchar(20);index"`
	DeliveryAddress string               `gorm:"type:text"`
	Subtotal        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	VATRate         decimal.Decimal      `gorm:"column:vat_rate;type:decimal(6,4);not null"`
	TaxAmount       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Total           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SoldByUserID    *uuid.UUID           `gorm:"type:uuid;index"`
	Items           []SaleItemModel      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is the persistence model for a sale line.
type SaleItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductSKU  string          `gorm:"column:product_sku;type:varchar(100)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    int64           `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain Sale aggregate.
func (m *SaleModel) ToDomain() *sales.Sale {
	sale := &sales.Sale{
		StoreAggregateRoot: shared.StoreAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			StoreID: m.StoreID,
		},
		DisplayCode: m.DisplayCode,
		Customer: sales.Customer{
			CustomerID: m.CustomerID,
			Name:       m.CustomerName,
			Phone:      m.CustomerPhone,
			Email:      m.CustomerEmail,
		},
		Channel:         m.Channel,
		PaymentMethod:   m.PaymentMethod,
		DeliveryType:    m.DeliveryType,
		DeliveryStatus:  m.DeliveryStatus,
		DeliveryAddress: m.DeliveryAddress,
		Subtotal:        m.Subtotal,
		VATRate:         m.VATRate,
		TaxAmount:       m.TaxAmount,
		Total:           m.Total,
		SoldByUserID:    m.SoldByUserID,
		Items:           make([]sales.SaleItem, 0, len(m.Items)),
	}
	for i := range m.Items {
		sale.Items = append(sale.Items, m.Items[i].ToDomain())
	}
	return sale
}

// FromDomain populates the persistence model from a domain Sale aggregate.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainStoreAggregateRoot(s.StoreAggregateRoot)
	m.DisplayCode = s.DisplayCode
	m.CustomerID = s.Customer.CustomerID
	m.CustomerName = s.Customer.Name
	m.CustomerPhone = s.Customer.Phone
	m.CustomerEmail = s.Customer.Email
	m.Channel = s.Channel
	m.PaymentMethod = s.PaymentMethod
	m.DeliveryType = s.DeliveryType
	m.DeliveryStatus = s.DeliveryStatus
	m.DeliveryAddress = s.DeliveryAddress
	m.Subtotal = s.Subtotal
	m.VATRate = s.VATRate
	m.TaxAmount = s.TaxAmount
	m.Total = s.Total
	m.SoldByUserID = s.SoldByUserID
	m.Items = make([]SaleItemModel, 0, len(s.Items))
	for i := range s.Items {
		item := SaleItemModel{}
		item.FromDomain(&s.Items[i])
		m.Items = append(m.Items, item)
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale aggregate.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() sales.SaleItem {
	return sales.SaleItem{
		ID:          m.ID,
		SaleID:      m.SaleID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		ProductSKU:  m.ProductSKU,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
		LineTotal:   m.LineTotal,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SaleItem.
func (m *SaleItemModel) FromDomain(item *sales.SaleItem) {
	m.ID = item.ID
	m.SaleID = item.SaleID
	m.ProductID = item.ProductID
	m.ProductName = item.ProductName
	m.ProductSKU = item.ProductSKU
	m.UnitPrice = item.UnitPrice
	m.Quantity = item.Quantity
	m.LineTotal = item.LineTotal
	m.CreatedAt = item.CreatedAt
}
