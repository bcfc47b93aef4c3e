package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/sales"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReceiptRenderer struct {
	pdf []byte
	err error
}

func (s *stubReceiptRenderer) RenderReceipt(_ context.Context, _ *identity.Store, _ *sales.Sale) ([]byte, error) {
	return s.pdf, s.err
}

func newDeliverySale(t *testing.T, storeID uuid.UUID) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(storeID, sales.Customer{Name: "Ada Obi"}, sales.ChannelOnline,
		sales.PaymentTransfer, sales.DeliveryDelivery, "12 Marina Rd, Lagos", decimal.NewFromFloat(0.075))
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(uuid.New(), "Bluetooth Speaker", "SKU-001", decimal.NewFromInt(1000), 1))
	return sale
}

func newPickupSale(t *testing.T, storeID uuid.UUID) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(storeID, sales.Customer{Name: "Chidi Eze"}, sales.ChannelPOS,
		sales.PaymentCash, sales.DeliveryPickup, "", decimal.NewFromFloat(0.075))
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(uuid.New(), "Power Bank", "SKU-002", decimal.NewFromInt(500), 2))
	return sale
}

func TestSaleService_UpdateDeliveryStatus(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	service := NewSaleService(saleRepo, new(MockStoreRepository), nil, zap.NewNop())
	storeID := uuid.New()
	sale := newDeliverySale(t, storeID)

	saleRepo.On("FindByIDForStore", mock.Anything, storeID, sale.ID).Return(sale, nil)
	saleRepo.On("UpdateDeliveryStatus", mock.Anything, sale).Return(nil)

	response, err := service.UpdateDeliveryStatus(context.Background(), storeID, sale.ID,
		UpdateDeliveryRequest{Status: sales.DeliveryStatusProcessing})

	require.NoError(t, err)
	assert.Equal(t, "processing", response.DeliveryStatus)
}

func TestSaleService_UpdateDeliveryStatus_PickupSale(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	service := NewSaleService(saleRepo, new(MockStoreRepository), nil, zap.NewNop())
	storeID := uuid.New()
	sale := newPickupSale(t, storeID)

	saleRepo.On("FindByIDForStore", mock.Anything, storeID, sale.ID).Return(sale, nil)

	_, err := service.UpdateDeliveryStatus(context.Background(), storeID, sale.ID,
		UpdateDeliveryRequest{Status: sales.DeliveryStatusProcessing})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	saleRepo.AssertNotCalled(t, "UpdateDeliveryStatus", mock.Anything, mock.Anything)
}

func TestSaleService_UpdateDeliveryStatus_SkippedTransition(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	service := NewSaleService(saleRepo, new(MockStoreRepository), nil, zap.NewNop())
	storeID := uuid.New()
	sale := newDeliverySale(t, storeID)

	saleRepo.On("FindByIDForStore", mock.Anything, storeID, sale.ID).Return(sale, nil)

	// pending cannot jump straight to delivered
	_, err := service.UpdateDeliveryStatus(context.Background(), storeID, sale.ID,
		UpdateDeliveryRequest{Status: sales.DeliveryStatusDelivered})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestSaleService_List_RejectsUnknownChannel(t *testing.T) {
	service := NewSaleService(new(MockSaleRepository), new(MockStoreRepository), nil, zap.NewNop())

	_, err := service.List(context.Background(), uuid.New(), SaleListFilter{Channel: "market"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION", domainErr.Code)
}

func TestSaleService_List(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	service := NewSaleService(saleRepo, new(MockStoreRepository), nil, zap.NewNop())
	storeID := uuid.New()
	sale := newPickupSale(t, storeID)

	saleRepo.On("FindAllForStore", mock.Anything, storeID, mock.AnythingOfType("sales.SaleFilter")).
		Return([]sales.Sale{*sale}, int64(1), nil)

	result, err := service.List(context.Background(), storeID, SaleListFilter{Channel: "pos", Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Sales, 1)
	assert.Equal(t, sale.DisplayCode, result.Sales[0].DisplayCode)
}

func TestSaleService_Receipt(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	storeRepo := new(MockStoreRepository)
	renderer := &stubReceiptRenderer{pdf: []byte("%PDF-1.4")}
	service := NewSaleService(saleRepo, storeRepo, renderer, zap.NewNop())
	store := newTestStore(t)
	sale := newPickupSale(t, store.ID)

	saleRepo.On("FindByIDForStore", mock.Anything, store.ID, sale.ID).Return(sale, nil)
	storeRepo.On("FindByID", mock.Anything, store.ID).Return(store, nil)

	pdf, fileName, err := service.Receipt(context.Background(), store.ID, sale.ID)

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
	assert.Equal(t, "receipt-"+sale.DisplayCode+".pdf", fileName)
}

func TestSaleService_Receipt_NotConfigured(t *testing.T) {
	service := NewSaleService(new(MockSaleRepository), new(MockStoreRepository), nil, zap.NewNop())

	_, _, err := service.Receipt(context.Background(), uuid.New(), uuid.New())

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RECEIPTS_DISABLED", domainErr.Code)
}
