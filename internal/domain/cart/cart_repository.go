package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindByUserID finds a user's cart with its items
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save persists the cart, replacing its items wholesale
	Save(ctx context.Context, cart *Cart) error

	// Delete removes the cart and its items
	Delete(ctx context.Context, userID uuid.UUID) error
}
