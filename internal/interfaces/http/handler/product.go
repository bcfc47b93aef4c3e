package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/storelink/backend/internal/application/catalog"
	"github.com/storelink/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewProductHandler creates a new ProductHandler. imageService may be nil
// when object storage is not configured.
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	SKU               string `json:"sku" binding:"required,min=1,max=64"`
	Name              string `json:"name" binding:"required,min=1,max=200"`
	Description       string `json:"description" binding:"max=2000"`
	Category          string `json:"category" binding:"max=100"`
	Barcode           string `json:"barcode" binding:"max=50"`
	Price             string `json:"price" binding:"required"`
	StockQuantity     int64  `json:"stock_quantity" binding:"min=0"`
	LowStockThreshold int64  `json:"low_stock_threshold" binding:"min=0"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name              string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description       string  `json:"description" binding:"max=2000"`
	Category          string  `json:"category" binding:"max=100"`
	Barcode           string  `json:"barcode" binding:"max=50"`
	Price             *string `json:"price"`
	LowStockThreshold *int64  `json:"low_stock_threshold" binding:"omitempty,min=0"`
}

// AdjustStockRequest is the request body for a manual stock correction
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// InitiateImageUploadRequest is the request body for requesting an image upload URL
type InitiateImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,gt=0"`
}

// ConfirmImageUploadRequest is the request body for confirming an upload
type ConfirmImageUploadRequest struct {
	ImageKey string `json:"image_key" binding:"required,max=1024"`
}

// ListProductsQuery holds filter parameters for listing products
type ListProductsQuery struct {
	dto.ListRequest
	Category string `form:"category" binding:"max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.BadRequest(c, "Invalid price format")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), storeID, catalogapp.CreateProductRequest{
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Barcode:           req.Barcode,
		Price:             price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Get handles GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.Get(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	result, err := h.productService.List(c.Request.Context(), storeID, catalogapp.ProductListFilter{
		Search:   query.Search,
		Category: query.Category,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Products, result.Total, result.Page, result.PageSize)
}

// Update handles PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := catalogapp.UpdateProductRequest{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Barcode:           req.Barcode,
		LowStockThreshold: req.LowStockThreshold,
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			h.BadRequest(c, "Invalid price format")
			return
		}
		appReq.Price = &price
	}

	product, err := h.productService.Update(c.Request.Context(), storeID, productID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// AdjustStock handles POST /api/v1/products/:id/stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), storeID, productID, catalogapp.AdjustStockRequest{
		Delta:  req.Delta,
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Activate handles POST /api/v1/products/:id/activate
func (h *ProductHandler) Activate(c *gin.Context) {
	h.setStatus(c, h.productService.Activate)
}

// Deactivate handles POST /api/v1/products/:id/deactivate
func (h *ProductHandler) Deactivate(c *gin.Context) {
	h.setStatus(c, h.productService.Deactivate)
}

// Delete handles DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), storeID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Categories handles GET /api/v1/products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	categories, err := h.productService.ListCategories(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, categories)
}

// LowStock handles GET /api/v1/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	products, err := h.productService.ListLowStock(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// InitiateImageUpload handles POST /api/v1/products/:id/image/upload-url
func (h *ProductHandler) InitiateImageUpload(c *gin.Context) {
	if h.imageService == nil {
		h.ErrorWithCode(c, "ERR_STORAGE_DISABLED", "Image storage is not configured")
		return
	}

	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req InitiateImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.imageService.InitiateUpload(c.Request.Context(), storeID, productID, catalogapp.InitiateImageUploadRequest{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		FileSize:    req.FileSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ConfirmImageUpload handles POST /api/v1/products/:id/image/confirm
func (h *ProductHandler) ConfirmImageUpload(c *gin.Context) {
	if h.imageService == nil {
		h.ErrorWithCode(c, "ERR_STORAGE_DISABLED", "Image storage is not configured")
		return
	}

	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req ConfirmImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.imageService.ConfirmUpload(c.Request.Context(), storeID, productID, req.ImageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// RemoveImage handles DELETE /api/v1/products/:id/image
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	if h.imageService == nil {
		h.ErrorWithCode(c, "ERR_STORAGE_DISABLED", "Image storage is not configured")
		return
	}

	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.imageService.RemoveImage(c.Request.Context(), storeID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// setStatus factors the shared shape of activate/deactivate endpoints
func (h *ProductHandler) setStatus(c *gin.Context, fn func(ctx context.Context, storeID, productID uuid.UUID) error) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	productID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := fn(c.Request.Context(), storeID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
