package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSalesReportRepository is a mock implementation of report.SalesReportRepository
type MockSalesReportRepository struct {
	mock.Mock
}

func (m *MockSalesReportRepository) GetDashboardStats(ctx context.Context, storeID uuid.UUID) (*report.DashboardStats, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DashboardStats), args.Error(1)
}

func (m *MockSalesReportRepository) GetDailySalesTrend(ctx context.Context, filter report.SalesReportFilter) ([]report.DailySalesTrend, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.DailySalesTrend), args.Error(1)
}

func (m *MockSalesReportRepository) GetProductSalesRanking(ctx context.Context, filter report.SalesReportFilter) ([]report.ProductSalesRanking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.ProductSalesRanking), args.Error(1)
}

func (m *MockSalesReportRepository) GetChannelSplit(ctx context.Context, filter report.SalesReportFilter) ([]report.ChannelSplit, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.ChannelSplit), args.Error(1)
}

func (m *MockSalesReportRepository) GetPeriodSummary(ctx context.Context, storeID uuid.UUID, start, end time.Time) (*report.PeriodSummary, error) {
	args := m.Called(ctx, storeID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.PeriodSummary), args.Error(1)
}

func TestReportService_GetDashboardStats(t *testing.T) {
	reportRepo := new(MockSalesReportRepository)
	service := NewReportService(reportRepo, zap.NewNop())
	storeID := uuid.New()

	stats := &report.DashboardStats{
		TodaySalesTotal:   decimal.NewFromInt(21500),
		TodaySalesCount:   4,
		ProductCount:      120,
		LowStockCount:     3,
		PendingDeliveries: 2,
	}
	reportRepo.On("GetDashboardStats", mock.Anything, storeID).Return(stats, nil)

	result, err := service.GetDashboardStats(context.Background(), storeID)

	require.NoError(t, err)
	assert.Equal(t, int64(4), result.TodaySalesCount)
	assert.True(t, result.TodaySalesTotal.Equal(decimal.NewFromInt(21500)))
}

func TestReportService_GetAnalytics_DefaultWindow(t *testing.T) {
	reportRepo := new(MockSalesReportRepository)
	service := NewReportService(reportRepo, zap.NewNop())
	storeID := uuid.New()

	var captured report.SalesReportFilter
	matchFilter := mock.MatchedBy(func(f report.SalesReportFilter) bool {
		captured = f
		return f.StoreID == storeID
	})
	reportRepo.On("GetDailySalesTrend", mock.Anything, matchFilter).Return([]report.DailySalesTrend{}, nil)
	reportRepo.On("GetProductSalesRanking", mock.Anything, matchFilter).Return([]report.ProductSalesRanking{}, nil)
	reportRepo.On("GetChannelSplit", mock.Anything, matchFilter).Return([]report.ChannelSplit{}, nil)

	result, err := service.GetAnalytics(context.Background(), storeID, 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultAnalyticsDays, result.Days)
	assert.Equal(t, 30, int(captured.EndDate.Sub(captured.StartDate).Hours()/24))
}

func TestReportService_GetAnalytics_CapsWindow(t *testing.T) {
	reportRepo := new(MockSalesReportRepository)
	service := NewReportService(reportRepo, zap.NewNop())
	storeID := uuid.New()

	reportRepo.On("GetDailySalesTrend", mock.Anything, mock.Anything).Return([]report.DailySalesTrend{}, nil)
	reportRepo.On("GetProductSalesRanking", mock.Anything, mock.Anything).Return([]report.ProductSalesRanking{}, nil)
	reportRepo.On("GetChannelSplit", mock.Anything, mock.Anything).Return([]report.ChannelSplit{}, nil)

	result, err := service.GetAnalytics(context.Background(), storeID, 5000)

	require.NoError(t, err)
	assert.Equal(t, MaxAnalyticsDays, result.Days)
}
