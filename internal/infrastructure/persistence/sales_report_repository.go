package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/report"
	"github.com/storelink/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSalesReportRepository implements SalesReportRepository using GORM
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

// GetDashboardStats returns the dashboard counters for a store
func (r *GormSalesReportRepository) GetDashboardStats(ctx context.Context, storeID uuid.UUID) (*report.DashboardStats, error) {
	type todayResult struct {
		SalesTotal decimal.Decimal
		SalesCount int64
	}

	// Day boundaries are UTC everywhere: the analytics window and tax
	// period truncation use the same convention.
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var today todayResult
	if err := r.db.WithContext(ctx).Table("sales").
		Select("COALESCE(SUM(total), 0) as sales_total, COUNT(id) as sales_count").
		Where("store_id = ? AND created_at >= ?", storeID, dayStart).
		Scan(&today).Error; err != nil {
		return nil, err
	}

	var productCount int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("store_id = ? AND status = ?", storeID, catalog.ProductStatusActive).
		Count(&productCount).Error; err != nil {
		return nil, err
	}

	var lowStockCount int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("store_id = ? AND status = ? AND low_stock_threshold > 0 AND stock_quantity <= low_stock_threshold",
			storeID, catalog.ProductStatusActive).
		Count(&lowStockCount).Error; err != nil {
		return nil, err
	}

	var pendingDeliveries int64
	if err := r.db.WithContext(ctx).Table("sales").
		Where("store_id = ? AND delivery_type = ? AND delivery_status IN ?",
			storeID, sales.DeliveryDelivery,
			[]sales.DeliveryStatus{sales.DeliveryStatusPending, sales.DeliveryStatusProcessing, sales.DeliveryStatusShipped}).
		Count(&pendingDeliveries).Error; err != nil {
		return nil, err
	}

	return &report.DashboardStats{
		TodaySalesTotal:   today.SalesTotal,
		TodaySalesCount:   today.SalesCount,
		ProductCount:      productCount,
		LowStockCount:     lowStockCount,
		PendingDeliveries: pendingDeliveries,
	}, nil
}

// GetDailySalesTrend returns one row per day in the filter window,
// including zero-sale days
func (r *GormSalesReportRepository) GetDailySalesTrend(ctx context.Context, filter report.SalesReportFilter) ([]report.DailySalesTrend, error) {
	type dailyResult struct {
		Date       string
		OrderCount int64
		Revenue    decimal.Decimal
		TaxAmount  decimal.Decimal
		ItemsSold  int64
	}

	var results []dailyResult
	err := r.db.WithContext(ctx).Table("sales").
		Select(`
			DATE(created_at) as date,
			COUNT(id) as order_count,
			COALESCE(SUM(total), 0) as revenue,
			COALESCE(SUM(tax_amount), 0) as tax_amount
		`).
		Where("store_id = ?", filter.StoreID).
		Where("created_at >= ? AND created_at < ?", filter.StartDate, filter.EndDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	// Item quantities come from the lines table; summing them in the query
	// above would multiply the sale totals by the line count.
	type itemsResult struct {
		Date      string
		ItemsSold int64
	}
	var items []itemsResult
	err = r.db.WithContext(ctx).Table("sale_items si").
		Select("DATE(s.created_at) as date, COALESCE(SUM(si.quantity), 0) as items_sold").
		Joins("JOIN sales s ON s.id = si.sale_id").
		Where("s.store_id = ?", filter.StoreID).
		Where("s.created_at >= ? AND s.created_at < ?", filter.StartDate, filter.EndDate).
		Group("DATE(s.created_at)").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]dailyResult, len(results))
	for _, row := range results {
		byDay[dayKey(row.Date)] = row
	}
	for _, row := range items {
		key := dayKey(row.Date)
		day := byDay[key]
		day.ItemsSold = row.ItemsSold
		byDay[key] = day
	}

	// Emit a row per calendar day so charts do not skip quiet days
	var trends []report.DailySalesTrend
	start := time.Date(filter.StartDate.Year(), filter.StartDate.Month(), filter.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	for day := start; day.Before(filter.EndDate); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		row, ok := byDay[key]
		if !ok {
			trends = append(trends, report.DailySalesTrend{
				Date:      day,
				Revenue:   decimal.Zero,
				TaxAmount: decimal.Zero,
			})
			continue
		}
		trends = append(trends, report.DailySalesTrend{
			Date:       day,
			OrderCount: row.OrderCount,
			Revenue:    row.Revenue,
			TaxAmount:  row.TaxAmount,
			ItemsSold:  row.ItemsSold,
		})
	}

	return trends, nil
}

// GetProductSalesRanking returns the top N products by revenue
func (r *GormSalesReportRepository) GetProductSalesRanking(ctx context.Context, filter report.SalesReportFilter) ([]report.ProductSalesRanking, error) {
	type rankingResult struct {
		ProductID     uuid.UUID
		ProductSKU    string
		ProductName   string
		TotalQuantity int64
		TotalAmount   decimal.Decimal
		OrderCount    int64
	}

	topN := filter.TopN
	if topN <= 0 {
		topN = 10
	}

	var results []rankingResult
	err := r.db.WithContext(ctx).Table("sale_items si").
		Select(`
			si.product_id,
			MAX(si.product_sku) as product_sku,
			MAX(si.product_name) as product_name,
			COALESCE(SUM(si.quantity), 0) as total_quantity,
			COALESCE(SUM(si.line_total), 0) as total_amount,
			COUNT(DISTINCT s.id) as order_count
		`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Where("s.store_id = ?", filter.StoreID).
		Where("s.created_at >= ? AND s.created_at < ?", filter.StartDate, filter.EndDate).
		Group("si.product_id").
		Order("total_amount DESC").
		Limit(topN).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	rankings := make([]report.ProductSalesRanking, len(results))
	for i, row := range results {
		rankings[i] = report.ProductSalesRanking{
			Rank:          i + 1,
			ProductID:     row.ProductID,
			ProductSKU:    row.ProductSKU,
			ProductName:   row.ProductName,
			TotalQuantity: row.TotalQuantity,
			TotalAmount:   row.TotalAmount,
			OrderCount:    row.OrderCount,
		}
	}

	return rankings, nil
}

// GetChannelSplit returns revenue grouped by sale channel
func (r *GormSalesReportRepository) GetChannelSplit(ctx context.Context, filter report.SalesReportFilter) ([]report.ChannelSplit, error) {
	var results []report.ChannelSplit
	err := r.db.WithContext(ctx).Table("sales").
		Select(`
			channel,
			COUNT(id) as order_count,
			COALESCE(SUM(total), 0) as total_amount
		`).
		Where("store_id = ?", filter.StoreID).
		Where("created_at >= ? AND created_at < ?", filter.StartDate, filter.EndDate).
		Group("channel").
		Order("total_amount DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetPeriodSummary aggregates sales settled within [start, end)
func (r *GormSalesReportRepository) GetPeriodSummary(ctx context.Context, storeID uuid.UUID, start, end time.Time) (*report.PeriodSummary, error) {
	type summaryResult struct {
		SaleCount    int64
		GrossAmount  decimal.Decimal
		NetSubtotal  decimal.Decimal
		VATCollected decimal.Decimal
	}

	var result summaryResult
	err := r.db.WithContext(ctx).Table("sales").
		Select(`
			COUNT(id) as sale_count,
			COALESCE(SUM(total), 0) as gross_amount,
			COALESCE(SUM(subtotal), 0) as net_subtotal,
			COALESCE(SUM(tax_amount), 0) as vat_collected
		`).
		Where("store_id = ?", storeID).
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &report.PeriodSummary{
		PeriodStart:  start,
		PeriodEnd:    end,
		SaleCount:    result.SaleCount,
		GrossAmount:  result.GrossAmount,
		NetSubtotal:  result.NetSubtotal,
		VATCollected: result.VATCollected,
	}, nil
}

// dayKey trims a scanned DATE() value to its YYYY-MM-DD prefix. Drivers
// disagree on whether dates come back as bare dates or full timestamps.
func dayKey(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// Ensure GormSalesReportRepository implements SalesReportRepository
var _ report.SalesReportRepository = (*GormSalesReportRepository)(nil)
