package tax

import (
	"context"

	"github.com/google/uuid"
)

// PeriodRepository defines the interface for tax period persistence
type PeriodRepository interface {
	// FindByID finds a period by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Period, error)

	// FindByIDForStore finds a period by ID within a store
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Period, error)

	// FindAllForStore lists a store's periods, newest start date first
	FindAllForStore(ctx context.Context, storeID uuid.UUID) ([]Period, error)

	// FindOverlapping finds periods whose date range intersects the given
	// range, excluding the period with excludeID (uuid.Nil to exclude none)
	FindOverlapping(ctx context.Context, storeID uuid.UUID, period *Period, excludeID uuid.UUID) ([]Period, error)

	// Save creates or updates a period
	Save(ctx context.Context, period *Period) error

	// Delete deletes a period
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}
