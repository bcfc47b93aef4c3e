package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when CommerceMetrics is built without a meter.
var ErrMeterNil = errors.New("commerce metrics: meter cannot be nil")

// CommerceMetrics tracks settlement throughput and catalog health.
// Settlement counters are recorded inline by the sales application
// layer; the catalog gauges are refreshed periodically per store.
type CommerceMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	saleSettledTotal   *Counter
	saleAmountTotal    *Counter
	settlementDuration *Histogram

	lowStockCount     *Gauge
	pendingDeliveries *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	healthProvider CatalogHealthProvider
}

// CatalogHealthProvider supplies per-store catalog and fulfilment
// counts for the periodic gauges. It keeps the telemetry layer off the
// domain repositories.
type CatalogHealthProvider interface {
	// GetLowStockCount returns the number of active products at or below
	// their low-stock threshold.
	GetLowStockCount(ctx context.Context, storeID uuid.UUID) (int64, error)

	// GetPendingDeliveryCount returns delivery sales not yet delivered
	// or failed.
	GetPendingDeliveryCount(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// StoreProvider supplies the store IDs to collect gauges for.
type StoreProvider interface {
	GetActiveStoreIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CommerceMetricsConfig holds configuration for CommerceMetrics.
type CommerceMetricsConfig struct {
	Meter          metric.Meter
	Logger         *zap.Logger
	HealthProvider CatalogHealthProvider
}

// NewCommerceMetrics creates the commerce metric instruments.
func NewCommerceMetrics(cfg CommerceMetricsConfig) (*CommerceMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CommerceMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		healthProvider: cfg.HealthProvider,
	}

	var err error

	cm.saleSettledTotal, err = NewCounter(
		cfg.Meter,
		"storelink_sale_settled_total",
		"Total number of sales settled",
		"{sales}",
	)
	if err != nil {
		return nil, err
	}

	cm.saleAmountTotal, err = NewCounter(
		cfg.Meter,
		"storelink_sale_amount_total",
		"Total settled sale amount in kobo",
		"{kobo}",
	)
	if err != nil {
		return nil, err
	}

	cm.settlementDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "storelink_settlement_duration_seconds",
		Description: "Time spent settling a sale, transaction included",
		Unit:        "s",
		Boundaries:  SettlementDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.lowStockCount, err = NewGauge(
		cfg.Meter,
		"storelink_low_stock_count",
		"Active products at or below their low-stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	cm.pendingDeliveries, err = NewGauge(
		cfg.Meter,
		"storelink_pending_deliveries",
		"Delivery sales awaiting fulfilment",
		"{sales}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// RecordSaleSettled records one settled sale: the count, the gross
// amount in kobo and how long settlement took.
func (cm *CommerceMetrics) RecordSaleSettled(ctx context.Context, storeID uuid.UUID, channel string, total decimal.Decimal, took time.Duration) {
	storeAttr := AttrStoreID.String(storeID.String())
	channelAttr := AttrChannel.String(channel)

	cm.saleSettledTotal.Inc(ctx, storeAttr, channelAttr)

	totalKobo := total.Mul(decimal.NewFromInt(100)).IntPart()
	cm.saleAmountTotal.Add(ctx, totalKobo, storeAttr, channelAttr)

	cm.settlementDuration.RecordDuration(ctx, took, channelAttr)
}

// RecordLowStockCount records the low-stock gauge for a store.
func (cm *CommerceMetrics) RecordLowStockCount(ctx context.Context, storeID uuid.UUID, count int64) {
	cm.lowStockCount.Record(ctx, count, AttrStoreID.String(storeID.String()))
}

// RecordPendingDeliveries records the pending-delivery gauge for a store.
func (cm *CommerceMetrics) RecordPendingDeliveries(ctx context.Context, storeID uuid.UUID, count int64) {
	cm.pendingDeliveries.Record(ctx, count, AttrStoreID.String(storeID.String()))
}

// StartPeriodicCollection refreshes the per-store gauges every interval
// (default 5 minutes) until Stop is called. Non-blocking.
func (cm *CommerceMetrics) StartPeriodicCollection(ctx context.Context, stores StoreProvider, interval time.Duration) {
	cm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go cm.runPeriodicCollection(ctx, stores, interval)
	})
}

func (cm *CommerceMetrics) runPeriodicCollection(ctx context.Context, stores StoreProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cm.collectCatalogGauges(ctx, stores)

	for {
		select {
		case <-cm.stopChan:
			cm.logger.Info("Stopping commerce metrics collection")
			return
		case <-ctx.Done():
			cm.logger.Info("Context cancelled, stopping commerce metrics collection")
			return
		case <-ticker.C:
			cm.collectCatalogGauges(ctx, stores)
		}
	}
}

func (cm *CommerceMetrics) collectCatalogGauges(ctx context.Context, stores StoreProvider) {
	if cm.healthProvider == nil {
		return
	}

	storeIDs, err := stores.GetActiveStoreIDs(ctx)
	if err != nil {
		cm.logger.Error("Failed to list stores for metrics collection", zap.Error(err))
		return
	}

	for _, storeID := range storeIDs {
		cm.collectStoreGauges(ctx, storeID)
	}
}

func (cm *CommerceMetrics) collectStoreGauges(ctx context.Context, storeID uuid.UUID) {
	lowStock, err := cm.healthProvider.GetLowStockCount(ctx, storeID)
	if err != nil {
		cm.logger.Warn("Failed to get low stock count",
			zap.String("store_id", storeID.String()),
			zap.Error(err))
	} else {
		cm.RecordLowStockCount(ctx, storeID, lowStock)
	}

	pending, err := cm.healthProvider.GetPendingDeliveryCount(ctx, storeID)
	if err != nil {
		cm.logger.Warn("Failed to get pending delivery count",
			zap.String("store_id", storeID.String()),
			zap.Error(err))
	} else {
		cm.RecordPendingDeliveries(ctx, storeID, pending)
	}
}

// Stop stops the periodic collection.
func (cm *CommerceMetrics) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
}
