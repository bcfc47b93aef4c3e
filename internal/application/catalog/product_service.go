package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StorefrontInvalidator drops the cached public storefront of a store
// after its catalog changes. Implemented by the storefront service.
type StorefrontInvalidator interface {
	InvalidateStore(ctx context.Context, storeID uuid.UUID) error
}

// ProductService handles product catalog operations for store staff
type ProductService struct {
	productRepo catalog.ProductRepository
	invalidator StorefrontInvalidator
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	invalidator StorefrontInvalidator,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Create creates a new product in the store's catalog
func (s *ProductService) Create(ctx context.Context, storeID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, storeID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(storeID, req.SKU, req.Name, req.Price)
	if err != nil {
		return nil, err
	}

	if req.Description != "" || req.Category != "" {
		if err := product.Update(req.Name, req.Description, req.Category); err != nil {
			return nil, err
		}
	}
	if req.Barcode != "" {
		if err := product.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.StockQuantity > 0 {
		if err := product.AdjustStock(req.StockQuantity); err != nil {
			return nil, err
		}
	}
	if req.LowStockThreshold > 0 {
		if err := product.SetLowStockThreshold(req.LowStockThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("store_id", storeID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	s.invalidateStorefront(ctx, storeID)

	response := ToProductResponse(product)
	return &response, nil
}

// Get returns a product by ID, scoped to the store
func (s *ProductService) Get(ctx context.Context, storeID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List returns a page of the store's products
func (s *ProductService) List(ctx context.Context, storeID uuid.UUID, filter ProductListFilter) (*ProductListResult, error) {
	domainFilter := s.buildFilter(filter)

	total, err := s.productRepo.CountForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindAllForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}

	paginated := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &ProductListResult{
		Products:   paginated.Items,
		Total:      paginated.Total,
		Page:       paginated.Page,
		PageSize:   paginated.PageSize,
		TotalPages: paginated.TotalPages,
	}, nil
}

// Update updates a product's details
func (s *ProductService) Update(ctx context.Context, storeID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description, req.Category); err != nil {
		return nil, err
	}
	if err := product.SetBarcode(req.Barcode); err != nil {
		return nil, err
	}
	if req.Price != nil {
		if err := product.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.LowStockThreshold != nil {
		if err := product.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateStorefront(ctx, storeID)

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock applies a manual stock correction
func (s *ProductService) AdjustStock(ctx context.Context, storeID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError("INVALID_ADJUSTMENT", "Stock adjustment cannot be zero")
	}

	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Stock adjusted",
		zap.String("product_id", productID.String()),
		zap.Int64("delta", req.Delta),
		zap.Int64("stock", product.StockQuantity),
		zap.String("reason", req.Reason))

	s.invalidateStorefront(ctx, storeID)

	response := ToProductResponse(product)
	return &response, nil
}

// Deactivate hides the product from the storefront and blocks sales
func (s *ProductService) Deactivate(ctx context.Context, storeID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return err
	}

	if err := product.Deactivate(); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	s.invalidateStorefront(ctx, storeID)
	return nil
}

// Activate makes the product visible and sellable again
func (s *ProductService) Activate(ctx context.Context, storeID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return err
	}

	if err := product.Activate(); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	s.invalidateStorefront(ctx, storeID)
	return nil
}

// Delete removes a product permanently. Settled sales keep their
// snapshots, so history is unaffected.
func (s *ProductService) Delete(ctx context.Context, storeID, productID uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, storeID, productID); err != nil {
		return err
	}

	s.logger.Info("Product deleted",
		zap.String("store_id", storeID.String()),
		zap.String("product_id", productID.String()))

	s.invalidateStorefront(ctx, storeID)
	return nil
}

// ListCategories returns the distinct categories of a store's catalog
func (s *ProductService) ListCategories(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	return s.productRepo.ListCategories(ctx, storeID)
}

// ListLowStock returns active products at or below their low stock threshold
func (s *ProductService) ListLowStock(ctx context.Context, storeID uuid.UUID) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, storeID)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses, nil
}

func (s *ProductService) buildFilter(filter ProductListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	return domainFilter
}

// invalidateStorefront drops the store's cached storefront. Failures are
// logged and swallowed: the cache TTL bounds staleness.
func (s *ProductService) invalidateStorefront(ctx context.Context, storeID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateStore(ctx, storeID); err != nil {
		s.logger.Warn("Failed to invalidate storefront cache",
			zap.String("store_id", storeID.String()),
			zap.Error(err))
	}
}
