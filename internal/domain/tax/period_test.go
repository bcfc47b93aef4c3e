package tax

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPeriod(t *testing.T) {
	storeID := uuid.New()

	t.Run("creates open period", func(t *testing.T) {
		p, err := NewPeriod(storeID, "Q1 2026", date(2026, 1, 1), date(2026, 3, 31))

		require.NoError(t, err)
		assert.Equal(t, PeriodStatusOpen, p.Status)
		assert.False(t, p.IsClosed())
		assert.Equal(t, "Q1 2026", p.Label)
	})

	t.Run("normalizes timestamps to days", func(t *testing.T) {
		p, err := NewPeriod(storeID, "January",
			time.Date(2026, 1, 1, 13, 45, 0, 0, time.UTC),
			time.Date(2026, 1, 31, 2, 10, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.Equal(t, date(2026, 1, 1), p.StartDate)
		assert.Equal(t, date(2026, 1, 31), p.EndDate)
	})

	t.Run("single day period is valid", func(t *testing.T) {
		_, err := NewPeriod(storeID, "One day", date(2026, 1, 1), date(2026, 1, 1))
		assert.NoError(t, err)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		_, err := NewPeriod(storeID, "Bad", date(2026, 2, 1), date(2026, 1, 1))
		assert.Error(t, err)
	})

	t.Run("rejects empty label", func(t *testing.T) {
		_, err := NewPeriod(storeID, "  ", date(2026, 1, 1), date(2026, 1, 31))
		assert.Error(t, err)
	})
}

func TestPeriodClose(t *testing.T) {
	p := mustNewPeriod(t)

	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())
	require.NotNil(t, p.ClosedAt)

	t.Run("closing twice fails", func(t *testing.T) {
		assert.Error(t, p.Close())
	})

	t.Run("closed period cannot be updated", func(t *testing.T) {
		err := p.Update("New label", date(2026, 1, 1), date(2026, 1, 31))
		assert.Error(t, err)
	})
}

func TestPeriodOverlaps(t *testing.T) {
	p := mustNewPeriod(t) // Jan 1 - Mar 31 2026

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		overlaps bool
	}{
		{"identical range", date(2026, 1, 1), date(2026, 3, 31), true},
		{"contained", date(2026, 2, 1), date(2026, 2, 28), true},
		{"straddles start", date(2025, 12, 1), date(2026, 1, 15), true},
		{"straddles end", date(2026, 3, 15), date(2026, 4, 15), true},
		{"touches end date", date(2026, 3, 31), date(2026, 6, 30), true},
		{"after", date(2026, 4, 1), date(2026, 6, 30), false},
		{"before", date(2025, 10, 1), date(2025, 12, 31), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, p.Overlaps(tt.start, tt.end))
		})
	}
}

func TestPeriodContains(t *testing.T) {
	p := mustNewPeriod(t)

	assert.True(t, p.Contains(date(2026, 1, 1)))
	assert.True(t, p.Contains(time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(date(2026, 4, 1)))
	assert.False(t, p.Contains(date(2025, 12, 31)))
}

func TestPeriodRangeEnd(t *testing.T) {
	p := mustNewPeriod(t)

	assert.Equal(t, date(2026, 4, 1), p.RangeEnd())
}

func mustNewPeriod(t *testing.T) *Period {
	t.Helper()
	p, err := NewPeriod(uuid.New(), "Q1 2026", date(2026, 1, 1), date(2026, 3, 31))
	require.NoError(t, err)
	return p
}
