package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	salesapp "github.com/storelink/backend/internal/application/sales"
	"github.com/storelink/backend/internal/interfaces/http/dto"
)

// SaleHandler handles staff-facing sales endpoints
type SaleHandler struct {
	BaseHandler
	settlementService *salesapp.SettlementService
	saleService       *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(settlementService *salesapp.SettlementService, saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{
		settlementService: settlementService,
		saleService:       saleService,
	}
}

// ListSalesQuery holds filter parameters for listing sales
type ListSalesQuery struct {
	dto.ListRequest
	From          string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Channel       string `form:"channel" binding:"omitempty,oneof=pos online"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=cash card transfer"`
}

// CreatePOSSale handles POST /api/v1/sales. The sale settles in one
// transaction and is attributed to the staff member ringing it up.
func (h *SaleHandler) CreatePOSSale(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	staffID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req salesapp.POSSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.settlementService.SettlePOSSale(c.Request.Context(), storeID, staffID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// List handles GET /api/v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var query ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	filter := salesapp.SaleListFilter{
		Channel:       query.Channel,
		PaymentMethod: query.PaymentMethod,
		Page:          query.Page,
		PageSize:      query.PageSize,
	}

	if query.From != "" {
		from, _ := time.Parse("2006-01-02", query.From)
		filter.From = &from
	}
	if query.To != "" {
		// Inclusive end date: the filter bound is the start of the next day
		to, _ := time.Parse("2006-01-02", query.To)
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}

	result, err := h.saleService.List(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Sales, result.Total, result.Page, result.PageSize)
}

// Get handles GET /api/v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.Get(c.Request.Context(), storeID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// UpdateDelivery handles POST /api/v1/sales/:id/delivery
func (h *SaleHandler) UpdateDelivery(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	var req salesapp.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.saleService.UpdateDeliveryStatus(c.Request.Context(), storeID, saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Receipt handles GET /api/v1/sales/:id/receipt and streams the rendered
// PDF back to the caller.
func (h *SaleHandler) Receipt(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	pdf, fileName, err := h.saleService.Receipt(c.Request.Context(), storeID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
