package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/storelink/backend/internal/application/identity"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/interfaces/http/dto"
)

// StaffHandler handles staff management endpoints
type StaffHandler struct {
	BaseHandler
	staffService *identityapp.StaffService
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffService *identityapp.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// CreateStaffRequest is the request body for creating a staff member
type CreateStaffRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=20"`
	Role        string `json:"role" binding:"required,oneof=manager cashier"`
}

// ChangeStaffRoleRequest is the request body for changing a staff role
type ChangeStaffRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=manager cashier"`
}

// ListStaffQuery holds filter parameters for listing staff
type ListStaffQuery struct {
	dto.ListRequest
	Role   string `form:"role" binding:"omitempty,oneof=manager cashier owner"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive locked"`
}

// Create handles POST /api/v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	info, err := h.staffService.CreateStaff(c.Request.Context(), identityapp.CreateStaffInput{
		StoreID:     storeID,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        identity.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toUserResponse(*info))
}

// List handles GET /api/v1/staff
func (h *StaffHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var query ListStaffQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	result, err := h.staffService.ListStaff(c.Request.Context(), identityapp.ListStaffInput{
		StoreID:  storeID,
		Keyword:  query.Search,
		Role:     query.Role,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	staff := make([]UserResponse, 0, len(result.Staff))
	for _, info := range result.Staff {
		staff = append(staff, toUserResponse(info))
	}

	h.SuccessWithMeta(c, staff, result.Total, result.Page, result.PageSize)
}

// Deactivate handles POST /api/v1/staff/:id/deactivate
func (h *StaffHandler) Deactivate(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid staff ID")
		return
	}

	if err := h.staffService.DeactivateStaff(c.Request.Context(), storeID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Staff member deactivated"})
}

// Reactivate handles POST /api/v1/staff/:id/reactivate
func (h *StaffHandler) Reactivate(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid staff ID")
		return
	}

	if err := h.staffService.ReactivateStaff(c.Request.Context(), storeID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Staff member reactivated"})
}

// ChangeRole handles PUT /api/v1/staff/:id/role
func (h *StaffHandler) ChangeRole(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	userID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid staff ID")
		return
	}

	var req ChangeStaffRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	info, err := h.staffService.ChangeStaffRole(c.Request.Context(), storeID, userID, identity.Role(req.Role))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*info))
}
