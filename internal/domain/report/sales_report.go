package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardStats is the read model behind the store dashboard
type DashboardStats struct {
	TodaySalesTotal   decimal.Decimal `json:"today_sales_total"`
	TodaySalesCount   int64           `json:"today_sales_count"`
	ProductCount      int64           `json:"product_count"`
	LowStockCount     int64           `json:"low_stock_count"`
	PendingDeliveries int64           `json:"pending_deliveries"`
}

// DailySalesTrend represents one day in the analytics series
type DailySalesTrend struct {
	Date       time.Time       `json:"date"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	ItemsSold  int64           `json:"items_sold"`
}

// ProductSalesRanking represents a product ranked by revenue
type ProductSalesRanking struct {
	Rank          int             `json:"rank"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductSKU    string          `json:"product_sku"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	OrderCount    int64           `json:"order_count"`
}

// ChannelSplit is revenue and order count grouped by sale channel
type ChannelSplit struct {
	Channel     string          `json:"channel"`
	OrderCount  int64           `json:"order_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PeriodSummary is the VAT report for a tax period: all sales whose
// settlement time falls within the period's date range.
type PeriodSummary struct {
	PeriodID     uuid.UUID       `json:"period_id"`
	PeriodLabel  string          `json:"period_label"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	SaleCount    int64           `json:"sale_count"`
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	NetSubtotal  decimal.Decimal `json:"net_subtotal"`
	VATCollected decimal.Decimal `json:"vat_collected"`
}

// SalesReportFilter defines the window for analytics queries
type SalesReportFilter struct {
	StoreID   uuid.UUID `json:"-"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TopN      int       `json:"top_n,omitempty"`
}

// SalesReportRepository defines the interface for sales report queries
type SalesReportRepository interface {
	// GetDashboardStats returns the dashboard counters for a store
	GetDashboardStats(ctx context.Context, storeID uuid.UUID) (*DashboardStats, error)

	// GetDailySalesTrend returns one row per day in the filter window,
	// including zero-sale days
	GetDailySalesTrend(ctx context.Context, filter SalesReportFilter) ([]DailySalesTrend, error)

	// GetProductSalesRanking returns the top N products by revenue
	GetProductSalesRanking(ctx context.Context, filter SalesReportFilter) ([]ProductSalesRanking, error)

	// GetChannelSplit returns revenue grouped by sale channel
	GetChannelSplit(ctx context.Context, filter SalesReportFilter) ([]ChannelSplit, error)

	// GetPeriodSummary aggregates sales settled within [start, end)
	GetPeriodSummary(ctx context.Context, storeID uuid.UUID, start, end time.Time) (*PeriodSummary, error)
}
