package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/report"
	"go.uber.org/zap"
)

const (
	// DefaultAnalyticsDays is the trailing window when none is requested
	DefaultAnalyticsDays = 30
	// MaxAnalyticsDays caps the trailing window
	MaxAnalyticsDays = 365
	// DefaultTopProducts is how many ranked products the analytics return
	DefaultTopProducts = 10
)

// AnalyticsResponse is the trailing-window sales analytics for a store
type AnalyticsResponse struct {
	Days        int                          `json:"days"`
	StartDate   time.Time                    `json:"start_date"`
	EndDate     time.Time                    `json:"end_date"`
	DailyTrend  []report.DailySalesTrend     `json:"daily_trend"`
	TopProducts []report.ProductSalesRanking `json:"top_products"`
	Channels    []report.ChannelSplit        `json:"channels"`
}

// ReportService serves the dashboard and analytics read models. All
// queries are store-scoped aggregations over settled sales.
type ReportService struct {
	reportRepo report.SalesReportRepository
	logger     *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo report.SalesReportRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// GetDashboardStats returns the dashboard counters for a store
func (s *ReportService) GetDashboardStats(ctx context.Context, storeID uuid.UUID) (*report.DashboardStats, error) {
	return s.reportRepo.GetDashboardStats(ctx, storeID)
}

// GetAnalytics returns the trailing-window analytics. Out-of-range day
// counts are clamped rather than rejected.
func (s *ReportService) GetAnalytics(ctx context.Context, storeID uuid.UUID, days int) (*AnalyticsResponse, error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	if days > MaxAnalyticsDays {
		days = MaxAnalyticsDays
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	filter := report.SalesReportFilter{
		StoreID:   storeID,
		StartDate: start,
		EndDate:   end,
		TopN:      DefaultTopProducts,
	}

	trend, err := s.reportRepo.GetDailySalesTrend(ctx, filter)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.reportRepo.GetProductSalesRanking(ctx, filter)
	if err != nil {
		return nil, err
	}
	channels, err := s.reportRepo.GetChannelSplit(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &AnalyticsResponse{
		Days:        days,
		StartDate:   start,
		EndDate:     end,
		DailyTrend:  trend,
		TopProducts: topProducts,
		Channels:    channels,
	}, nil
}
