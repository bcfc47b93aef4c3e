// Package integration tests sale settlement against a real database:
// atomic checkout, price snapshots, VAT math and the oversell guard.
package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	salesapp "github.com/storelink/backend/internal/application/sales"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/sales"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// SettlementTestSetup provides a migrated database, a seeded store with a
// cashier, and a SettlementService wired to real repositories.
type SettlementTestSetup struct {
	DB          *TestDB
	StoreRepo   identity.StoreRepository
	ProductRepo catalog.ProductRepository
	SaleRepo    sales.SaleRepository
	UserRepo    identity.UserRepository
	Service     *salesapp.SettlementService

	Store   *identity.Store
	Cashier *identity.User
}

func NewSettlementTestSetup(t *testing.T) *SettlementTestSetup {
	t.Helper()
	ctx := context.Background()

	testDB := NewTestDB(t)

	storeRepo := persistence.NewGormStoreRepository(testDB.DB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	saleRepo := persistence.NewGormSaleRepository(testDB.DB)
	userRepo := persistence.NewGormUserRepository(testDB.DB)
	txScope := persistence.NewGormSalesTransactionScope(testDB.DB)

	service := salesapp.NewSettlementService(storeRepo, txScope, zap.NewNop())

	owner, err := identity.NewOwner("owner@amala.ng", "ownerpass123", "Store Owner")
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(ctx, owner))

	store, err := identity.NewStore(owner.ID, "amala-corner", "Amala Corner")
	require.NoError(t, err)
	require.NoError(t, storeRepo.Save(ctx, store))

	cashier, err := identity.NewStaff(store.ID, "cashier@amala.ng", "cashierpass1", "Till One", identity.RoleCashier)
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(ctx, cashier))

	return &SettlementTestSetup{
		DB:          testDB,
		StoreRepo:   storeRepo,
		ProductRepo: productRepo,
		SaleRepo:    saleRepo,
		UserRepo:    userRepo,
		Service:     service,
		Store:       store,
		Cashier:     cashier,
	}
}

// SeedProduct creates an active product with the given price and stock.
func (s *SettlementTestSetup) SeedProduct(t *testing.T, sku string, price string, stock int64) *catalog.Product {
	t.Helper()
	ctx := context.Background()

	product, err := catalog.NewProduct(s.Store.ID, sku, "Product "+sku, decimal.RequireFromString(price))
	require.NoError(t, err)
	product.StockQuantity = stock
	require.NoError(t, s.ProductRepo.Save(ctx, product))

	return product
}

func (s *SettlementTestSetup) stockOf(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	product, err := s.ProductRepo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return product.StockQuantity
}

func (s *SettlementTestSetup) saleCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := s.SaleRepo.FindAllForStore(context.Background(), s.Store.ID, sales.NewSaleFilter())
	require.NoError(t, err)
	return total
}

func TestSettlement_GuestCheckout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSettlementTestSetup(t)
	ctx := context.Background()

	t.Run("settles sale with snapshots and VAT", func(t *testing.T) {
		rice := setup.SeedProduct(t, "rice-50kg", "1500.00", 20)
		oil := setup.SeedProduct(t, "oil-5l", "800.00", 10)

		resp, err := setup.Service.SettleGuestCheckout(ctx, "amala-corner", salesapp.GuestCheckoutRequest{
			Items: []salesapp.SaleLineRequest{
				{ProductID: rice.ID, Quantity: 2},
				{ProductID: oil.ID, Quantity: 1},
			},
			CustomerName:    "Ngozi Okafor",
			CustomerPhone:   "+2348012345678",
			PaymentMethod:   sales.PaymentTransfer,
			DeliveryType:    sales.DeliveryDelivery,
			DeliveryAddress: "12 Allen Avenue, Ikeja",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.DisplayCode)
		assert.Equal(t, setup.Store.ID, resp.StoreID)
		assert.Equal(t, "online", resp.Channel)
		assert.Equal(t, "delivery", resp.DeliveryType)
		assert.Equal(t, "pending", resp.DeliveryStatus)
		assert.Equal(t, "Ngozi Okafor", resp.CustomerName)
		assert.Nil(t, resp.CustomerID)
		assert.Nil(t, resp.SoldByUserID)

		// Subtotal 2*1500 + 1*800 = 3800, VAT 7.5% = 285
		assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("3800.00")), "subtotal: %s", resp.Subtotal)
		assert.True(t, resp.VATRate.Equal(decimal.RequireFromString("0.075")))
		assert.True(t, resp.TaxAmount.Equal(decimal.RequireFromString("285.00")), "tax: %s", resp.TaxAmount)
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("4085.00")), "total: %s", resp.Total)

		require.Len(t, resp.Items, 2)
		byProduct := map[uuid.UUID]salesapp.SaleItemResponse{}
		for _, item := range resp.Items {
			byProduct[item.ProductID] = item
		}
		assert.Equal(t, "Product rice-50kg", byProduct[rice.ID].ProductName)
		assert.Equal(t, "RICE-50KG", byProduct[rice.ID].ProductSKU)
		assert.True(t, byProduct[rice.ID].LineTotal.Equal(decimal.RequireFromString("3000.00")))

		// Stock decremented in the same transaction
		assert.Equal(t, int64(18), setup.stockOf(t, rice.ID))
		assert.Equal(t, int64(9), setup.stockOf(t, oil.ID))

		// Sale is fully reloadable with its item snapshots
		saved, err := setup.SaleRepo.FindByIDForStore(ctx, setup.Store.ID, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, resp.DisplayCode, saved.DisplayCode)
		assert.Len(t, saved.Items, 2)
	})

	t.Run("catalog price wins even after product price changes", func(t *testing.T) {
		product := setup.SeedProduct(t, "garri-10kg", "400.00", 50)

		resp, err := setup.Service.SettleGuestCheckout(ctx, "amala-corner", salesapp.GuestCheckoutRequest{
			Items:         []salesapp.SaleLineRequest{{ProductID: product.ID, Quantity: 3}},
			CustomerName:  "Tunde",
			PaymentMethod: sales.PaymentCash,
			DeliveryType:  sales.DeliveryPickup,
		})
		require.NoError(t, err)
		require.NoError(t, product.SetPrice(decimal.RequireFromString("999.00")))
		require.NoError(t, setup.ProductRepo.Save(ctx, product))

		// The settled sale keeps the price it was sold at
		saved, err := setup.SaleRepo.FindByIDForStore(ctx, setup.Store.ID, resp.ID)
		require.NoError(t, err)
		require.Len(t, saved.Items, 1)
		assert.True(t, saved.Items[0].UnitPrice.Equal(decimal.RequireFromString("400.00")))
	})

	t.Run("insufficient stock on one line rolls back everything", func(t *testing.T) {
		plenty := setup.SeedProduct(t, "beans-5kg", "600.00", 100)
		scarce := setup.SeedProduct(t, "honey-1l", "2500.00", 2)

		before := setup.saleCount(t)

		_, err := setup.Service.SettleGuestCheckout(ctx, "amala-corner", salesapp.GuestCheckoutRequest{
			Items: []salesapp.SaleLineRequest{
				{ProductID: plenty.ID, Quantity: 5},
				{ProductID: scarce.ID, Quantity: 3},
			},
			CustomerName:  "Chidi",
			PaymentMethod: sales.PaymentCard,
			DeliveryType:  sales.DeliveryPickup,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

		// Nothing changed: neither line was decremented, no sale row
		assert.Equal(t, int64(100), setup.stockOf(t, plenty.ID))
		assert.Equal(t, int64(2), setup.stockOf(t, scarce.ID))
		assert.Equal(t, before, setup.saleCount(t))
	})

	t.Run("rejects products from another store", func(t *testing.T) {
		otherOwner, err := identity.NewOwner("other@owner.ng", "otherpass123", "Other Owner")
		require.NoError(t, err)
		require.NoError(t, setup.UserRepo.Create(ctx, otherOwner))

		otherStore, err := identity.NewStore(otherOwner.ID, "other-store", "Other Store")
		require.NoError(t, err)
		require.NoError(t, setup.StoreRepo.Save(ctx, otherStore))

		foreign, err := catalog.NewProduct(otherStore.ID, "foreign-sku", "Foreign Product", decimal.RequireFromString("100.00"))
		require.NoError(t, err)
		foreign.StockQuantity = 10
		require.NoError(t, setup.ProductRepo.Save(ctx, foreign))

		_, err = setup.Service.SettleGuestCheckout(ctx, "amala-corner", salesapp.GuestCheckoutRequest{
			Items:         []salesapp.SaleLineRequest{{ProductID: foreign.ID, Quantity: 1}},
			CustomerName:  "Emeka",
			PaymentMethod: sales.PaymentCash,
			DeliveryType:  sales.DeliveryPickup,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION", domainErr.Code)
	})

	t.Run("unknown store slug is not found", func(t *testing.T) {
		_, err := setup.Service.SettleGuestCheckout(ctx, "no-such-store", salesapp.GuestCheckoutRequest{
			Items:         []salesapp.SaleLineRequest{{ProductID: uuid.New(), Quantity: 1}},
			CustomerName:  "Nobody",
			PaymentMethod: sales.PaymentCash,
			DeliveryType:  sales.DeliveryPickup,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestSettlement_AccountCheckout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSettlementTestSetup(t)
	ctx := context.Background()

	t.Run("creates customer account and sale atomically", func(t *testing.T) {
		product := setup.SeedProduct(t, "yam-tuber", "900.00", 30)

		result, err := setup.Service.SettleAccountCheckout(ctx, "amala-corner", salesapp.AccountCheckoutRequest{
			Items:           []salesapp.SaleLineRequest{{ProductID: product.ID, Quantity: 2}},
			Email:           "buyer@example.ng",
			Password:        "buyerpass123",
			DisplayName:     "First Buyer",
			Phone:           "+2348098765432",
			PaymentMethod:   sales.PaymentTransfer,
			DeliveryType:    sales.DeliveryDelivery,
			DeliveryAddress: "3 Marina Road, Lagos",
		})
		require.NoError(t, err)

		assert.Equal(t, "buyer@example.ng", result.UserEmail)
		require.NotNil(t, result.Sale.CustomerID)
		assert.Equal(t, result.UserID, *result.Sale.CustomerID)

		// Account is persisted and usable
		account, err := setup.UserRepo.FindByEmail(ctx, "buyer@example.ng")
		require.NoError(t, err)
		assert.Equal(t, identity.RoleCustomer, account.Role)
		assert.True(t, account.VerifyPassword("buyerpass123"))

		assert.Equal(t, int64(28), setup.stockOf(t, product.ID))
	})

	t.Run("duplicate email fails without side effects", func(t *testing.T) {
		product := setup.SeedProduct(t, "palm-oil-2l", "1200.00", 15)
		before := setup.saleCount(t)

		_, err := setup.Service.SettleAccountCheckout(ctx, "amala-corner", salesapp.AccountCheckoutRequest{
			Items:         []salesapp.SaleLineRequest{{ProductID: product.ID, Quantity: 1}},
			Email:         "buyer@example.ng",
			Password:      "anotherpass1",
			DisplayName:   "Second Buyer",
			PaymentMethod: sales.PaymentCash,
			DeliveryType:  sales.DeliveryPickup,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)

		assert.Equal(t, int64(15), setup.stockOf(t, product.ID))
		assert.Equal(t, before, setup.saleCount(t))
	})
}

func TestSettlement_POSSale(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSettlementTestSetup(t)
	ctx := context.Background()

	t.Run("walk-in sale records seller and defaults to pickup", func(t *testing.T) {
		product := setup.SeedProduct(t, "bread-loaf", "950.00", 40)

		resp, err := setup.Service.SettlePOSSale(ctx, setup.Store.ID, setup.Cashier.ID, salesapp.POSSaleRequest{
			Items:         []salesapp.SaleLineRequest{{ProductID: product.ID, Quantity: 4}},
			PaymentMethod: sales.PaymentCash,
		})
		require.NoError(t, err)

		assert.Equal(t, "pos", resp.Channel)
		assert.Equal(t, "pickup", resp.DeliveryType)
		assert.Empty(t, resp.DeliveryStatus)
		require.NotNil(t, resp.SoldByUserID)
		assert.Equal(t, setup.Cashier.ID, *resp.SoldByUserID)
		assert.Nil(t, resp.CustomerID)

		assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("3800.00")))
		assert.Equal(t, int64(36), setup.stockOf(t, product.ID))
	})

	t.Run("duplicate lines for one product are merged", func(t *testing.T) {
		product := setup.SeedProduct(t, "soap-bar", "250.00", 10)

		resp, err := setup.Service.SettlePOSSale(ctx, setup.Store.ID, setup.Cashier.ID, salesapp.POSSaleRequest{
			Items: []salesapp.SaleLineRequest{
				{ProductID: product.ID, Quantity: 2},
				{ProductID: product.ID, Quantity: 3},
			},
			PaymentMethod: sales.PaymentCash,
		})
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		assert.Equal(t, int64(5), resp.Items[0].Quantity)
		assert.Equal(t, int64(5), setup.stockOf(t, product.ID))
	})
}

func TestSettlement_ConcurrentLastUnit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSettlementTestSetup(t)
	ctx := context.Background()

	product := setup.SeedProduct(t, "last-unit", "5000.00", 1)

	const buyers = 8
	results := make([]error, buyers)

	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := setup.Service.SettleGuestCheckout(ctx, "amala-corner", salesapp.GuestCheckoutRequest{
				Items:         []salesapp.SaleLineRequest{{ProductID: product.ID, Quantity: 1}},
				CustomerName:  fmt.Sprintf("Buyer %d", i),
				PaymentMethod: sales.PaymentTransfer,
				DeliveryType:  sales.DeliveryPickup,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	}

	assert.Equal(t, 1, succeeded, "exactly one buyer should win the last unit")
	assert.Equal(t, int64(0), setup.stockOf(t, product.ID))
	assert.Equal(t, int64(1), setup.saleCount(t))
}

func TestSettlement_DuplicateDisplayCodeTranslated(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewSettlementTestSetup(t)
	ctx := context.Background()

	newSale := func() *sales.Sale {
		sale, err := sales.NewSale(setup.Store.ID,
			sales.Customer{Name: "Ngozi Okafor"},
			sales.ChannelOnline, sales.PaymentTransfer,
			sales.DeliveryPickup, "", setup.Store.VATRate)
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(uuid.New(), "Bag of Rice", "RICE-50KG",
			decimal.RequireFromString("1500.00"), 1))
		require.NoError(t, sale.Finalize())
		return sale
	}

	first := newSale()
	require.NoError(t, setup.SaleRepo.Create(ctx, first))

	// A second insert under the same code must come back as
	// ErrAlreadyExists, not a raw driver error, so settlement can
	// regenerate the code instead of failing the checkout.
	second := newSale()
	second.DisplayCode = first.DisplayCode
	err := setup.SaleRepo.Create(ctx, second)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// A fresh code goes through.
	second.RegenerateDisplayCode()
	assert.NoError(t, setup.SaleRepo.Create(ctx, second))
}
