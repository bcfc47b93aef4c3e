package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/shared"
)

// MaxItemQuantity caps the quantity per cart line
const MaxItemQuantity = 999

// Cart is a per-user staging area for an intended purchase. It is never
// trusted for pricing: settlement re-reads products and prices from the
// catalog.
type Cart struct {
	shared.BaseAggregateRoot
	UserID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	StoreID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Items   []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem is a single product line in a cart
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCart creates an empty cart for a user shopping at a store
func NewCart(userID, storeID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Cart user cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Cart store cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		StoreID:           storeID,
		Items:             make([]CartItem, 0),
	}, nil
}

// Replace discards the current lines and installs the given ones. Duplicate
// product ids are merged by summing their quantities.
func (c *Cart) Replace(lines []Line) error {
	merged := make(map[uuid.UUID]int64, len(lines))
	order := make([]uuid.UUID, 0, len(lines))

	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_PRODUCT", "Cart line product cannot be empty")
		}
		if line.Quantity <= 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Cart line quantity must be positive")
		}
		if _, seen := merged[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		merged[line.ProductID] += line.Quantity
		if merged[line.ProductID] > MaxItemQuantity {
			return shared.NewDomainError("INVALID_QUANTITY", "Cart line quantity is too large")
		}
	}

	items := make([]CartItem, 0, len(order))
	for _, productID := range order {
		items = append(items, CartItem{
			BaseEntity: shared.NewBaseEntity(),
			CartID:     c.ID,
			ProductID:  productID,
			Quantity:   merged[productID],
		})
	}

	c.Items = items
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Clear removes all lines
func (c *Cart) Clear() {
	c.Items = make([]CartItem, 0)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsEmpty returns true when the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity returns the summed quantity across all lines
func (c *Cart) TotalQuantity() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Line is the caller-supplied shape of a cart line
type Line struct {
	ProductID uuid.UUID
	Quantity  int64
}
