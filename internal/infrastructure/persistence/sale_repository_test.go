package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/sales"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockSaleRepository creates a GormSaleRepository with a mocked SQL connection
func newMockSaleRepository(t *testing.T) (*GormSaleRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSaleRepository(gormDB), mock, mockDB
}

func newDeliverySale(t *testing.T) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(
		uuid.New(),
		sales.Customer{Name: "Ada"},
		sales.ChannelOnline,
		sales.PaymentTransfer,
		sales.DeliveryDelivery,
		"12 Marina Road, Lagos",
		decimal.NewFromFloat(0.075),
	)
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(uuid.New(), "Bag of Rice", "SKU-001", decimal.RequireFromString("1000.00"), 2))
	return sale
}

func TestGormSaleRepository_UpdateDeliveryStatus(t *testing.T) {
	t.Run("persists the transition when the version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockSaleRepository(t)
		defer mockDB.Close()

		sale := newDeliverySale(t)
		require.NoError(t, sale.UpdateDeliveryStatus(sales.DeliveryStatusProcessing))

		mock.ExpectExec(`UPDATE "sales" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateDeliveryStatus(context.Background(), sale)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrConcurrencyConflict on a stale version", func(t *testing.T) {
		repo, mock, mockDB := newMockSaleRepository(t)
		defer mockDB.Close()

		sale := newDeliverySale(t)
		require.NoError(t, sale.UpdateDeliveryStatus(sales.DeliveryStatusProcessing))

		// Another transaction advanced the sale first: the version guard
		// matches no rows but the sale itself still exists.
		mock.ExpectExec(`UPDATE "sales" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "sales"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.UpdateDeliveryStatus(context.Background(), sale)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when the sale row is gone", func(t *testing.T) {
		repo, mock, mockDB := newMockSaleRepository(t)
		defer mockDB.Close()

		sale := newDeliverySale(t)
		require.NoError(t, sale.UpdateDeliveryStatus(sales.DeliveryStatusProcessing))

		mock.ExpectExec(`UPDATE "sales" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "sales"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repo.UpdateDeliveryStatus(context.Background(), sale)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSaleRepository_ExistsByDisplayCode(t *testing.T) {
	t.Run("reports an existing code", func(t *testing.T) {
		repo, mock, mockDB := newMockSaleRepository(t)
		defer mockDB.Close()

		storeID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "sales" WHERE store_id = \$1 AND display_code = \$2`).
			WithArgs(storeID, "ORD-1756601000123-k3x9").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByDisplayCode(context.Background(), storeID, "ORD-1756601000123-k3x9")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a free code", func(t *testing.T) {
		repo, mock, mockDB := newMockSaleRepository(t)
		defer mockDB.Close()

		storeID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "sales" WHERE store_id = \$1 AND display_code = \$2`).
			WithArgs(storeID, "ORD-1-aaaa").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByDisplayCode(context.Background(), storeID, "ORD-1-aaaa")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSaleRepository_FindByDisplayCode(t *testing.T) {
	t.Run("returns ErrNotFound for an unknown code", func(t *testing.T) {
		repo, mock, mockDB := newMockSaleRepository(t)
		defer mockDB.Close()

		storeID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sales" WHERE store_id = \$1 AND display_code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(storeID, "ORD-1-aaaa", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		sale, err := repo.FindByDisplayCode(context.Background(), storeID, "ORD-1-aaaa")

		assert.Error(t, err)
		assert.Nil(t, sale)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
