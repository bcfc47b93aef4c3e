package tax

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/report"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/domain/tax"
	"go.uber.org/zap"
)

// PeriodRequest creates or updates a tax period
type PeriodRequest struct {
	Label     string    `json:"label" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// PeriodResponse is a tax period in API shape
type PeriodResponse struct {
	ID        uuid.UUID  `json:"id"`
	StoreID   uuid.UUID  `json:"store_id"`
	Label     string     `json:"label"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToPeriodResponse converts a domain period to its API shape
func ToPeriodResponse(period *tax.Period) PeriodResponse {
	return PeriodResponse{
		ID:        period.ID,
		StoreID:   period.StoreID,
		Label:     period.Label,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Status:    string(period.Status),
		ClosedAt:  period.ClosedAt,
		CreatedAt: period.CreatedAt,
	}
}

// PeriodService manages a store's VAT reporting periods. Periods bucket
// settled sales by date range for filing; ranges must not overlap.
type PeriodService struct {
	periodRepo tax.PeriodRepository
	reportRepo report.SalesReportRepository
	logger     *zap.Logger
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(periodRepo tax.PeriodRepository, reportRepo report.SalesReportRepository, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{
		periodRepo: periodRepo,
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// Create adds an open tax period. Ranges overlapping an existing period
// are rejected.
func (s *PeriodService) Create(ctx context.Context, storeID uuid.UUID, req PeriodRequest) (*PeriodResponse, error) {
	period, err := tax.NewPeriod(storeID, req.Label, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.rejectOverlap(ctx, storeID, period, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	s.logger.Info("Tax period created",
		zap.String("store_id", storeID.String()),
		zap.String("period_id", period.ID.String()),
		zap.String("label", period.Label))

	response := ToPeriodResponse(period)
	return &response, nil
}

// List returns the store's periods, newest start date first
func (s *PeriodService) List(ctx context.Context, storeID uuid.UUID) ([]PeriodResponse, error) {
	periods, err := s.periodRepo.FindAllForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	responses := make([]PeriodResponse, 0, len(periods))
	for i := range periods {
		responses = append(responses, ToPeriodResponse(&periods[i]))
	}
	return responses, nil
}

// Get returns a period by id, scoped to the store
func (s *PeriodService) Get(ctx context.Context, storeID, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForStore(ctx, storeID, periodID)
	if err != nil {
		return nil, err
	}

	response := ToPeriodResponse(period)
	return &response, nil
}

// Update changes an open period's label and range
func (s *PeriodService) Update(ctx context.Context, storeID, periodID uuid.UUID, req PeriodRequest) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForStore(ctx, storeID, periodID)
	if err != nil {
		return nil, err
	}

	if err := period.Update(req.Label, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	if err := s.rejectOverlap(ctx, storeID, period, period.ID); err != nil {
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	response := ToPeriodResponse(period)
	return &response, nil
}

// Close finalizes a period for filing. Closing an already closed period
// is an error, not a silent no-op, so double submissions surface.
func (s *PeriodService) Close(ctx context.Context, storeID, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForStore(ctx, storeID, periodID)
	if err != nil {
		return nil, err
	}

	if err := period.Close(); err != nil {
		return nil, err
	}

	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	s.logger.Info("Tax period closed",
		zap.String("store_id", storeID.String()),
		zap.String("period_id", periodID.String()))

	response := ToPeriodResponse(period)
	return &response, nil
}

// Delete removes an open period. Closed periods are retained for audit.
func (s *PeriodService) Delete(ctx context.Context, storeID, periodID uuid.UUID) error {
	period, err := s.periodRepo.FindByIDForStore(ctx, storeID, periodID)
	if err != nil {
		return err
	}
	if period.IsClosed() {
		return shared.NewDomainError("INVALID_STATE", "Closed periods cannot be deleted")
	}

	return s.periodRepo.Delete(ctx, storeID, periodID)
}

// Report aggregates the sales settled within the period
func (s *PeriodService) Report(ctx context.Context, storeID, periodID uuid.UUID) (*report.PeriodSummary, error) {
	period, err := s.periodRepo.FindByIDForStore(ctx, storeID, periodID)
	if err != nil {
		return nil, err
	}

	summary, err := s.reportRepo.GetPeriodSummary(ctx, storeID, period.StartDate, period.RangeEnd())
	if err != nil {
		return nil, err
	}

	summary.PeriodID = period.ID
	summary.PeriodLabel = period.Label
	summary.PeriodStart = period.StartDate
	summary.PeriodEnd = period.EndDate
	return summary, nil
}

func (s *PeriodService) rejectOverlap(ctx context.Context, storeID uuid.UUID, period *tax.Period, excludeID uuid.UUID) error {
	overlapping, err := s.periodRepo.FindOverlapping(ctx, storeID, period, excludeID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return shared.NewDomainError("CONFLICT", "Period overlaps an existing tax period: "+overlapping[0].Label)
	}
	return nil
}
