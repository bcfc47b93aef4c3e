package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	identityapp "github.com/storelink/backend/internal/application/identity"
)

// StoreHandler handles store settings endpoints
type StoreHandler struct {
	BaseHandler
	storeService *identityapp.StoreService
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storeService *identityapp.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// UpdateStoreRequest is the request body for updating store settings
type UpdateStoreRequest struct {
	Name         string   `json:"name" binding:"omitempty,min=1,max=200"`
	Description  string   `json:"description" binding:"max=2000"`
	ContactPhone string   `json:"contact_phone" binding:"max=20"`
	ContactEmail string   `json:"contact_email" binding:"omitempty,email"`
	Address      string   `json:"address" binding:"max=500"`
	VATRate      *string  `json:"vat_rate"`
	LogoURL      *string  `json:"logo_url" binding:"omitempty,max=500"`
}

// StoreResponse is the wire representation of a store
type StoreResponse struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	OwnerID      string          `json:"owner_id"`
	Status       string          `json:"status"`
	Currency     string          `json:"currency"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	ContactPhone string          `json:"contact_phone,omitempty"`
	ContactEmail string          `json:"contact_email,omitempty"`
	Address      string          `json:"address,omitempty"`
	LogoURL      string          `json:"logo_url,omitempty"`
	PublicURL    string          `json:"public_url"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toStoreResponse(info identityapp.StoreInfo) StoreResponse {
	return StoreResponse{
		ID:           info.ID.String(),
		Slug:         info.Slug,
		Name:         info.Name,
		Description:  info.Description,
		OwnerID:      info.OwnerID.String(),
		Status:       string(info.Status),
		Currency:     info.Currency,
		VATRate:      info.VATRate,
		ContactPhone: info.ContactPhone,
		ContactEmail: info.ContactEmail,
		Address:      info.Address,
		LogoURL:      info.LogoURL,
		PublicURL:    info.PublicURL,
		CreatedAt:    info.CreatedAt,
	}
}

// Get handles GET /api/v1/store
func (h *StoreHandler) Get(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	info, err := h.storeService.GetStore(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStoreResponse(*info))
}

// Update handles PUT /api/v1/store
func (h *StoreHandler) Update(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := identityapp.UpdateStoreInput{
		StoreID:      storeID,
		Name:         req.Name,
		Description:  req.Description,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
		LogoURL:      req.LogoURL,
	}

	if req.VATRate != nil {
		rate, err := decimal.NewFromString(*req.VATRate)
		if err != nil {
			h.BadRequest(c, "Invalid VAT rate format")
			return
		}
		input.VATRate = &rate
	}

	info, err := h.storeService.UpdateStore(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStoreResponse(*info))
}

// Deactivate handles POST /api/v1/store/deactivate. The storefront goes
// offline immediately; catalog data is retained.
func (h *StoreHandler) Deactivate(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	if err := h.storeService.DeactivateStore(c.Request.Context(), storeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Store deactivated"})
}

// Activate handles POST /api/v1/store/activate
func (h *StoreHandler) Activate(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.Forbidden(c, "This endpoint requires a store account")
		return
	}

	if err := h.storeService.ActivateStore(c.Request.Context(), storeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Store activated"})
}
