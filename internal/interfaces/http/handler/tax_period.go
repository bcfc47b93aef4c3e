package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	taxapp "github.com/storelink/backend/internal/application/tax"
)

// TaxPeriodHandler handles VAT reporting period endpoints
type TaxPeriodHandler struct {
	BaseHandler
	periodService *taxapp.PeriodService
}

// NewTaxPeriodHandler creates a new TaxPeriodHandler
func NewTaxPeriodHandler(periodService *taxapp.PeriodService) *TaxPeriodHandler {
	return &TaxPeriodHandler{periodService: periodService}
}

// Create handles POST /api/v1/tax-periods
func (h *TaxPeriodHandler) Create(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var req taxapp.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := h.periodService.Create(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, period)
}

// List handles GET /api/v1/tax-periods
func (h *TaxPeriodHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	periods, err := h.periodService.List(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, periods)
}

// Get handles GET /api/v1/tax-periods/:id
func (h *TaxPeriodHandler) Get(c *gin.Context) {
	h.withPeriod(c, func(storeID, periodID uuid.UUID) (any, error) {
		return h.periodService.Get(c.Request.Context(), storeID, periodID)
	})
}

// Update handles PUT /api/v1/tax-periods/:id
func (h *TaxPeriodHandler) Update(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	periodID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	var req taxapp.PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := h.periodService.Update(c.Request.Context(), storeID, periodID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, period)
}

// Close handles POST /api/v1/tax-periods/:id/close. Closing is final:
// a closed period rejects edits and a second close attempt.
func (h *TaxPeriodHandler) Close(c *gin.Context) {
	h.withPeriod(c, func(storeID, periodID uuid.UUID) (any, error) {
		return h.periodService.Close(c.Request.Context(), storeID, periodID)
	})
}

// Delete handles DELETE /api/v1/tax-periods/:id
func (h *TaxPeriodHandler) Delete(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	periodID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	if err := h.periodService.Delete(c.Request.Context(), storeID, periodID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Report handles GET /api/v1/tax-periods/:id/report
func (h *TaxPeriodHandler) Report(c *gin.Context) {
	h.withPeriod(c, func(storeID, periodID uuid.UUID) (any, error) {
		return h.periodService.Report(c.Request.Context(), storeID, periodID)
	})
}

// withPeriod factors the shared storeID/periodID plumbing of read-style endpoints
func (h *TaxPeriodHandler) withPeriod(c *gin.Context, fn func(storeID, periodID uuid.UUID) (any, error)) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	periodID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	result, err := fn(storeID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
