package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/storelink/backend/internal/application/report"
)

// ReportHandler handles dashboard and analytics endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// AnalyticsQuery holds the trailing-window parameter for analytics
type AnalyticsQuery struct {
	Days int `form:"days" binding:"omitempty,min=1"`
}

// DashboardStats handles GET /api/v1/dashboard/stats
func (h *ReportHandler) DashboardStats(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	stats, err := h.reportService.GetDashboardStats(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// Analytics handles GET /api/v1/analytics
func (h *ReportHandler) Analytics(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var query AnalyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	analytics, err := h.reportService.GetAnalytics(c.Request.Context(), storeID, query.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, analytics)
}
