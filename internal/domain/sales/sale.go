package sales

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/shared"
)

// Channel is where the sale was made
type Channel string

const (
	ChannelPOS    Channel = "pos"
	ChannelOnline Channel = "online"
)

// IsValid checks if the channel is a known channel
func (c Channel) IsValid() bool {
	return c == ChannelPOS || c == ChannelOnline
}

// PaymentMethod is how the sale was paid
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// IsValid checks if the payment method is known
func (p PaymentMethod) IsValid() bool {
	return p == PaymentCash || p == PaymentCard || p == PaymentTransfer
}

// DeliveryType is how the buyer receives the goods
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

// IsValid checks if the delivery type is known
func (d DeliveryType) IsValid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

// DeliveryStatus tracks fulfilment of delivery sales
type DeliveryStatus string

const (
	DeliveryStatusNone       DeliveryStatus = ""
	DeliveryStatusPending    DeliveryStatus = "pending"
	DeliveryStatusProcessing DeliveryStatus = "processing"
	DeliveryStatusShipped    DeliveryStatus = "shipped"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusFailed     DeliveryStatus = "failed"
)

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusProcessing, DeliveryStatusShipped,
		DeliveryStatusDelivered, DeliveryStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	switch s {
	case DeliveryStatusPending:
		return target == DeliveryStatusProcessing || target == DeliveryStatusFailed
	case DeliveryStatusProcessing:
		return target == DeliveryStatusShipped || target == DeliveryStatusFailed
	case DeliveryStatusShipped:
		return target == DeliveryStatusDelivered || target == DeliveryStatusFailed
	case DeliveryStatusDelivered, DeliveryStatusFailed:
		return false // Terminal states
	}
	return false
}

// SaleItem is an immutable line of a settled sale. Product name, SKU and
// unit price are snapshotted at settlement time so later catalog edits
// never change past sales.
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	ProductSKU  string
	UnitPrice   decimal.Decimal
	Quantity    int64
	LineTotal   decimal.Decimal // UnitPrice * Quantity
	CreatedAt   time.Time
}

// NewSaleItem creates a sale line from catalog data
func NewSaleItem(saleID, productID uuid.UUID, productName, productSKU string, unitPrice decimal.Decimal, quantity int64) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	qty := decimal.NewFromInt(quantity)
	return &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		ProductSKU:  productSKU,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice.Mul(qty),
		CreatedAt:   time.Now(),
	}, nil
}

// Customer is the buyer attribution on a sale. CustomerID is nil for
// guests and anonymous walk-ins; the name/phone/email snapshot survives
// account deletion.
type Customer struct {
	CustomerID *uuid.UUID
	Name       string
	Phone      string
	Email      string
}

// Sale is a settled, immutable sale. Only delivery-status fields may
// change after creation.
type Sale struct {
	shared.StoreAggregateRoot
	DisplayCode     string
	Customer        Customer
	Channel         Channel
	PaymentMethod   PaymentMethod
	DeliveryType    DeliveryType
	DeliveryStatus  DeliveryStatus
	DeliveryAddress string
	Subtotal        decimal.Decimal
	VATRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	Items           []SaleItem
	SoldByUserID    *uuid.UUID // Staff member who rang up a POS sale
}

// NewSale assembles a sale from priced lines and computes its totals.
// Tax is subtotal * vatRate rounded to 2 decimal places.
func NewSale(storeID uuid.UUID, customer Customer, channel Channel, payment PaymentMethod, delivery DeliveryType, deliveryAddress string, vatRate decimal.Decimal) (*Sale, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown sale channel")
	}
	if !payment.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if !delivery.IsValid() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_TYPE", "Unknown delivery type")
	}
	if vatRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate cannot be negative")
	}

	deliveryStatus := DeliveryStatusNone
	if delivery == DeliveryDelivery {
		if strings.TrimSpace(deliveryAddress) == "" {
			return nil, shared.NewDomainError("INVALID_ADDRESS", "Delivery address is required for delivery sales")
		}
		deliveryStatus = DeliveryStatusPending
	}

	return &Sale{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		DisplayCode:        NewDisplayCode(),
		Customer:           customer,
		Channel:            channel,
		PaymentMethod:      payment,
		DeliveryType:       delivery,
		DeliveryStatus:     deliveryStatus,
		DeliveryAddress:    strings.TrimSpace(deliveryAddress),
		Subtotal:           decimal.Zero,
		VATRate:            vatRate,
		TaxAmount:          decimal.Zero,
		Total:              decimal.Zero,
		Items:              make([]SaleItem, 0),
	}, nil
}

// AddItem appends a line and recomputes totals. Duplicate products are
// rejected; callers merge quantities upstream.
func (s *Sale) AddItem(productID uuid.UUID, productName, productSKU string, unitPrice decimal.Decimal, quantity int64) error {
	for _, item := range s.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Product already appears on this sale")
		}
	}

	item, err := NewSaleItem(s.ID, productID, productName, productSKU, unitPrice, quantity)
	if err != nil {
		return err
	}

	s.Items = append(s.Items, *item)
	s.recalculateTotals()
	return nil
}

// Finalize validates that the sale is complete and sellable
func (s *Sale) Finalize() error {
	if len(s.Items) == 0 {
		return shared.NewDomainError("EMPTY_SALE", "Sale must have at least one item")
	}
	return nil
}

// RegenerateDisplayCode replaces the display code after a uniqueness
// collision. The per-store unique index is the real guarantee; this is
// the one retry the settlement path allows.
func (s *Sale) RegenerateDisplayCode() {
	s.DisplayCode = NewDisplayCode()
}

// UpdateDeliveryStatus advances the delivery state machine
func (s *Sale) UpdateDeliveryStatus(target DeliveryStatus) error {
	if s.DeliveryType != DeliveryDelivery {
		return shared.NewDomainError("INVALID_STATE", "Sale does not have delivery fulfilment")
	}
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_DELIVERY_STATUS", "Unknown delivery status")
	}
	if !s.DeliveryStatus.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition delivery from %s to %s", s.DeliveryStatus, target))
	}

	s.DeliveryStatus = target
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// ItemCount returns the number of distinct lines
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// TotalQuantity returns the summed quantity across all lines
func (s *Sale) TotalQuantity() int64 {
	var total int64
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// SetSoldBy records the staff member who settled a POS sale
func (s *Sale) SetSoldBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	s.SoldByUserID = &userID
}

func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	s.Subtotal = subtotal
	s.TaxAmount = subtotal.Mul(s.VATRate).Round(2)
	s.Total = s.Subtotal.Add(s.TaxAmount)
}

const displayCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewDisplayCode builds a human-readable sale code, e.g.
// ORD-1756601000123-k3x9. The millisecond timestamp keeps codes roughly
// sortable; the random suffix disambiguates same-millisecond sales. A
// per-store unique index enforces actual uniqueness.
func NewDisplayCode() string {
	var suffix [4]byte
	max := big.NewInt(int64(len(displayCodeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			suffix[i] = displayCodeAlphabet[time.Now().Nanosecond()%len(displayCodeAlphabet)]
			continue
		}
		suffix[i] = displayCodeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix[:])
}
