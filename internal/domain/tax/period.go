package tax

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/shared"
)

// PeriodStatus represents the lifecycle of a tax period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// Period is a store-scoped date range that sales are bucketed into for
// VAT reporting. Ranges must not overlap within a store; the repository
// enforces that at save time.
type Period struct {
	shared.StoreAggregateRoot
	Label     string       `gorm:"type:varchar(100);not null"`
	StartDate time.Time    `gorm:"type:date;not null;index"`
	EndDate   time.Time    `gorm:"type:date;not null;index"`
	Status    PeriodStatus `gorm:"type:varchar(20);not null;default:'open'"`
	ClosedAt  *time.Time
}

// TableName returns the table name for GORM
func (Period) TableName() string {
	return "tax_periods"
}

// NewPeriod creates an open tax period. Dates are normalized to whole
// days; the range is inclusive on both ends.
func NewPeriod(storeID uuid.UUID, label string, startDate, endDate time.Time) (*Period, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store cannot be empty")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Period label cannot be empty")
	}
	if len(label) > 100 {
		return nil, shared.NewDomainError("INVALID_LABEL", "Period label cannot exceed 100 characters")
	}

	start := truncateToDay(startDate)
	end := truncateToDay(endDate)
	if end.Before(start) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Period end date cannot be before start date")
	}

	return &Period{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		Label:              label,
		StartDate:          start,
		EndDate:            end,
		Status:             PeriodStatusOpen,
	}, nil
}

// Update changes the label and date range of an open period
func (p *Period) Update(label string, startDate, endDate time.Time) error {
	if p.Status == PeriodStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Closed periods cannot be modified")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return shared.NewDomainError("INVALID_LABEL", "Period label cannot be empty")
	}

	start := truncateToDay(startDate)
	end := truncateToDay(endDate)
	if end.Before(start) {
		return shared.NewDomainError("INVALID_RANGE", "Period end date cannot be before start date")
	}

	p.Label = label
	p.StartDate = start
	p.EndDate = end
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Close marks the period closed. Closing twice is an error.
func (p *Period) Close() error {
	if p.Status == PeriodStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Period is already closed")
	}
	now := time.Now()
	p.Status = PeriodStatusClosed
	p.ClosedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// IsClosed returns true when the period has been closed
func (p *Period) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}

// Contains reports whether the given time falls within the period
func (p *Period) Contains(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}

// Overlaps reports whether two date ranges intersect
func (p *Period) Overlaps(startDate, endDate time.Time) bool {
	start := truncateToDay(startDate)
	end := truncateToDay(endDate)
	return !start.After(p.EndDate) && !end.Before(p.StartDate)
}

// RangeEnd returns the exclusive upper bound for querying sales in the
// period, i.e. midnight after the end date.
func (p *Period) RangeEnd() time.Time {
	return p.EndDate.AddDate(0, 0, 1)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
