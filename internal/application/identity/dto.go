package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned after authentication
type UserInfo struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Phone       string
	Role        identity.Role
	StoreID     *uuid.UUID
	Status      identity.UserStatus
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

// ToUserInfo maps a domain user to UserInfo
func ToUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.GetDisplayNameOrEmail(),
		Phone:       user.Phone,
		Role:        user.Role,
		StoreID:     user.StoreID,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// RegisterCustomerInput contains the input for customer registration
type RegisterCustomerInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

// RegisterBusinessInput contains the input for business registration.
// Creates the owner account and the store in one transaction.
type RegisterBusinessInput struct {
	Email        string
	Password     string
	DisplayName  string
	StoreName    string
	StoreSlug    string
	ContactPhone string
	Address      string
}

// RegisterBusinessResult contains the created owner and store
type RegisterBusinessResult struct {
	User  UserInfo
	Store StoreInfo
}

// StoreInfo contains store information returned by the API
type StoreInfo struct {
	ID           uuid.UUID
	Slug         string
	Name         string
	Description  string
	OwnerID      uuid.UUID
	Status       identity.StoreStatus
	Currency     string
	VATRate      decimal.Decimal
	ContactPhone string
	ContactEmail string
	Address      string
	LogoURL      string
	PublicURL    string
	CreatedAt    time.Time
}

// ToStoreInfo maps a domain store to StoreInfo. host is used to derive
// the public storefront URL.
func ToStoreInfo(store *identity.Store, host string) StoreInfo {
	return StoreInfo{
		ID:           store.ID,
		Slug:         store.Slug,
		Name:         store.Name,
		Description:  store.Description,
		OwnerID:      store.OwnerID,
		Status:       store.Status,
		Currency:     store.Currency,
		VATRate:      store.VATRate,
		ContactPhone: store.ContactPhone,
		ContactEmail: store.ContactEmail,
		Address:      store.Address,
		LogoURL:      store.LogoURL,
		PublicURL:    store.PublicURL(host),
		CreatedAt:    store.CreatedAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string        // JWT ID to blacklist
	TokenTTL time.Duration // Remaining lifetime of the token
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateStaffInput contains the input for staff creation
type CreateStaffInput struct {
	StoreID     uuid.UUID
	Email       string
	Password    string
	DisplayName string
	Phone       string
	Role        identity.Role // manager or cashier
}

// ListStaffInput contains filter options for listing staff
type ListStaffInput struct {
	StoreID  uuid.UUID
	Keyword  string
	Role     string
	Status   string
	Page     int
	PageSize int
}

// StaffListResult contains a page of staff members
type StaffListResult struct {
	Staff    []UserInfo
	Total    int64
	Page     int
	PageSize int
}

// UpdateStoreInput contains the input for updating store settings
type UpdateStoreInput struct {
	StoreID      uuid.UUID
	Name         string
	Description  string
	ContactPhone string
	ContactEmail string
	Address      string
	VATRate      *decimal.Decimal
	LogoURL      *string
}
