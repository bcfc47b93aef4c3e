package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/interfaces/http/dto"
)

// Action names a protected store operation. Handlers never compare role
// strings directly; every route declares the action it performs and the
// policy below decides which roles may perform it.
type Action string

const (
	ActionStoreManage    Action = "store:manage"
	ActionStaffManage    Action = "staff:manage"
	ActionProductsRead   Action = "products:read"
	ActionProductsWrite  Action = "products:write"
	ActionStockAdjust    Action = "stock:adjust"
	ActionSalesCreate    Action = "sales:create"
	ActionSalesRead      Action = "sales:read"
	ActionDeliveryUpdate Action = "delivery:update"
	ActionReportsRead    Action = "reports:read"
	ActionTaxManage      Action = "tax:manage"
	ActionTaxRead        Action = "tax:read"
)

// rolePolicy is the single source of truth for staff authorization.
// Owners implicitly hold every action.
var rolePolicy = map[Action][]identity.Role{
	ActionStoreManage:    {},
	ActionStaffManage:    {},
	ActionProductsRead:   {identity.RoleManager, identity.RoleCashier},
	ActionProductsWrite:  {identity.RoleManager},
	ActionStockAdjust:    {identity.RoleManager},
	ActionSalesCreate:    {identity.RoleManager, identity.RoleCashier},
	ActionSalesRead:      {identity.RoleManager, identity.RoleCashier},
	ActionDeliveryUpdate: {identity.RoleManager},
	ActionReportsRead:    {identity.RoleManager},
	ActionTaxManage:      {},
	ActionTaxRead:        {identity.RoleManager},
}

// RoleAllows reports whether the given role may perform the action
func RoleAllows(role identity.Role, action Action) bool {
	if role == identity.RoleOwner {
		return true
	}
	for _, allowed := range rolePolicy[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequireAction creates middleware that lets the request through only
// when the authenticated user's role is allowed to perform the action
func RequireAction(action Action) gin.HandlerFunc {
	return RequireActionWithConfig(action, PermissionConfig{})
}

// RequireActionWithConfig creates action middleware with custom config
func RequireActionWithConfig(action Action, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}

		if !RoleAllows(identity.Role(claims.Role), action) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Permission denied",
					zap.String("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.String("action", string(action)),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access denied: insufficient permissions", GetRequestID(c)))
			return
		}

		c.Next()
	}
}

// RequireStaff creates middleware that requires a staff token bound to a
// store. Customer tokens are rejected.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if claims.StoreID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "This endpoint requires a store account", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// RequireCustomer creates middleware that requires a customer token.
// Staff tokens are rejected since carts and checkout belong to shoppers.
func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if identity.Role(claims.Role) != identity.RoleCustomer {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "This endpoint requires a customer account", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
