package handler

import (
	"github.com/gin-gonic/gin"

	salesapp "github.com/storelink/backend/internal/application/sales"
	storefrontapp "github.com/storelink/backend/internal/application/storefront"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/interfaces/http/dto"
	"github.com/storelink/backend/internal/interfaces/http/middleware"
)

// PublicHandler handles the unauthenticated storefront surface: browsing
// a store's catalog and checking out.
type PublicHandler struct {
	BaseHandler
	storefrontService *storefrontapp.StorefrontService
	settlementService *salesapp.SettlementService
	userRepo          identity.UserRepository
}

// NewPublicHandler creates a new PublicHandler. userRepo resolves
// signed-in customers during checkout.
func NewPublicHandler(
	storefrontService *storefrontapp.StorefrontService,
	settlementService *salesapp.SettlementService,
	userRepo identity.UserRepository,
) *PublicHandler {
	return &PublicHandler{
		storefrontService: storefrontService,
		settlementService: settlementService,
		userRepo:          userRepo,
	}
}

// StorefrontQuery holds browse parameters for the public catalog
type StorefrontQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Category string `form:"category" binding:"max=100"`
	Search   string `form:"search" binding:"max=200"`
}

// Storefront handles GET /api/v1/public/store/:slug
func (h *PublicHandler) Storefront(c *gin.Context) {
	var uri dto.SlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid store slug")
		return
	}

	var query StorefrontQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.storefrontService.GetStorefront(c.Request.Context(), uri.Slug, storefrontapp.StorefrontQuery{
		Page:     query.Page,
		PageSize: query.PageSize,
		Category: query.Category,
		Search:   query.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Checkout handles POST /api/v1/public/store/:slug/checkout.
// Guests settle anonymously; a signed-in customer gets the sale attributed
// to their account and their cart cleared.
func (h *PublicHandler) Checkout(c *gin.Context) {
	var uri dto.SlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid store slug")
		return
	}

	var req salesapp.GuestCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	if claims := middleware.GetJWTClaims(c); claims != nil && identity.Role(claims.Role) == identity.RoleCustomer {
		userID, err := claims.GetUserUUID()
		if err != nil {
			h.Unauthorized(c, "Invalid token")
			return
		}
		customer, err := h.userRepo.FindByID(ctx, userID)
		if err != nil {
			h.HandleError(c, err)
			return
		}

		sale, err := h.settlementService.SettleCustomerCheckout(ctx, uri.Slug, customer, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, sale)
		return
	}

	sale, err := h.settlementService.SettleGuestCheckout(ctx, uri.Slug, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// CheckoutWithAccount handles POST /api/v1/public/store/:slug/checkout-with-account.
// The customer account is created in the same transaction as the sale:
// if settlement fails, no account exists afterwards.
func (h *PublicHandler) CheckoutWithAccount(c *gin.Context) {
	var uri dto.SlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid store slug")
		return
	}

	var req salesapp.AccountCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.settlementService.SettleAccountCheckout(c.Request.Context(), uri.Slug, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
