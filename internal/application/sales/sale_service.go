package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/sales"
	"github.com/storelink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReceiptRenderer renders a settled sale into a printable PDF receipt.
// Implemented by the infrastructure printing package.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, store *identity.Store, sale *sales.Sale) ([]byte, error)
}

// SaleService serves the staff-facing sale operations: listing, lookup,
// delivery fulfilment and receipts. Settlement itself lives in
// SettlementService.
type SaleService struct {
	saleRepo        sales.SaleRepository
	storeRepo       identity.StoreRepository
	receiptRenderer ReceiptRenderer
	logger          *zap.Logger
}

// NewSaleService creates a new SaleService. The receipt renderer may be
// nil when receipt generation is disabled.
func NewSaleService(saleRepo sales.SaleRepository, storeRepo identity.StoreRepository, receiptRenderer ReceiptRenderer, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		saleRepo:        saleRepo,
		storeRepo:       storeRepo,
		receiptRenderer: receiptRenderer,
		logger:          logger,
	}
}

// List returns a page of the store's sales, newest first
func (s *SaleService) List(ctx context.Context, storeID uuid.UUID, filter SaleListFilter) (*SaleListResult, error) {
	domainFilter := sales.NewSaleFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.From = filter.From
	domainFilter.To = filter.To
	if filter.Channel != "" {
		channel := sales.Channel(filter.Channel)
		if !channel.IsValid() {
			return nil, shared.NewDomainError("VALIDATION", "Unknown sale channel")
		}
		domainFilter.Channel = &channel
	}
	if filter.PaymentMethod != "" {
		payment := sales.PaymentMethod(filter.PaymentMethod)
		if !payment.IsValid() {
			return nil, shared.NewDomainError("VALIDATION", "Unknown payment method")
		}
		domainFilter.PaymentMethod = &payment
	}

	results, total, err := s.saleRepo.FindAllForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]SaleResponse, 0, len(results))
	for i := range results {
		responses = append(responses, ToSaleResponse(&results[i]))
	}

	return &SaleListResult{
		Sales:    responses,
		Total:    total,
		Page:     domainFilter.Page,
		PageSize: domainFilter.Limit(),
	}, nil
}

// Get returns a sale by id, scoped to the store
func (s *SaleService) Get(ctx context.Context, storeID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForStore(ctx, storeID, saleID)
	if err != nil {
		return nil, err
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// UpdateDeliveryStatus advances a delivery sale's fulfilment state.
// Pickup sales and invalid transitions are rejected.
func (s *SaleService) UpdateDeliveryStatus(ctx context.Context, storeID, saleID uuid.UUID, req UpdateDeliveryRequest) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForStore(ctx, storeID, saleID)
	if err != nil {
		return nil, err
	}

	if err := sale.UpdateDeliveryStatus(req.Status); err != nil {
		return nil, err
	}

	if err := s.saleRepo.UpdateDeliveryStatus(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("Delivery status updated",
		zap.String("sale_id", saleID.String()),
		zap.String("status", string(req.Status)))

	response := ToSaleResponse(sale)
	return &response, nil
}

// Receipt renders the sale's PDF receipt
func (s *SaleService) Receipt(ctx context.Context, storeID, saleID uuid.UUID) ([]byte, string, error) {
	if s.receiptRenderer == nil {
		return nil, "", shared.NewDomainError("RECEIPTS_DISABLED", "Receipt generation is not configured")
	}

	sale, err := s.saleRepo.FindByIDForStore(ctx, storeID, saleID)
	if err != nil {
		return nil, "", err
	}
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.receiptRenderer.RenderReceipt(ctx, store, sale)
	if err != nil {
		s.logger.Error("Receipt rendering failed",
			zap.String("sale_id", saleID.String()),
			zap.Error(err))
		return nil, "", shared.NewDomainError("RECEIPT_FAILED", "Failed to render receipt")
	}

	fileName := "receipt-" + sale.DisplayCode + ".pdf"
	return pdf, fileName, nil
}
