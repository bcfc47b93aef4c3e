package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/storelink/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "storelink-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, mp)

	assert.False(t, mp.IsEnabled())

	gotCfg := mp.GetConfig()
	assert.Equal(t, cfg.ServiceName, gotCfg.ServiceName)
	assert.False(t, gotCfg.Enabled)

	// Shutdown and flush are no-ops when disabled
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestMeterProvider_MeterWhenDisabled(t *testing.T) {
	logger := zaptest.NewLogger(t)

	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled: false,
	}, logger)
	require.NoError(t, err)

	// Disabled provider still hands out a usable (no-op) meter
	meter := mp.Meter("storelink-test")
	require.NotNil(t, meter)
}

func TestNewCounter(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	counter, err := telemetry.NewCounter(meter, "test_total", "A test counter", "{items}")
	require.NoError(t, err)
	require.NotNil(t, counter)

	ctx := context.Background()
	counter.Inc(ctx)
	counter.Add(ctx, 5, telemetry.AttrChannel.String("pos"))
}

func TestNewHistogram(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "test_duration_seconds",
		Description: "A test histogram",
		Unit:        "s",
		Boundaries:  telemetry.SettlementDurationBuckets,
	})
	require.NoError(t, err)
	require.NotNil(t, histogram)

	ctx := context.Background()
	histogram.Record(ctx, 0.042)
	histogram.RecordDuration(ctx, 15*time.Millisecond, telemetry.AttrChannel.String("online"))
}

func TestNewGauge(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	gauge, err := telemetry.NewGauge(meter, "test_level", "A test gauge", "{units}")
	require.NoError(t, err)
	require.NotNil(t, gauge)

	gauge.Record(context.Background(), 7)
}
