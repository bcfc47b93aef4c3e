package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/shared"
)

// StoreStatus represents the status of a store
type StoreStatus string

const (
	StoreStatusActive    StoreStatus = "active"
	StoreStatusInactive  StoreStatus = "inactive"
	StoreStatusSuspended StoreStatus = "suspended"
)

// DefaultVATRate is the default Nigerian VAT rate applied to new stores.
// Stores may override it; all settlement math reads the store's own rate.
var DefaultVATRate = decimal.NewFromFloat(0.075)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Store represents a business tenant in the multi-tenant system.
// It is the aggregate root owning products, sales, staff and tax periods.
type Store struct {
	shared.BaseAggregateRoot
	Slug         string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status       StoreStatus     `gorm:"type:varchar(20);not null;default:'active'"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'NGN'"`
	VATRate      decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	ContactPhone string          `gorm:"type:varchar(50)"`
	ContactEmail string          `gorm:"type:varchar(200)"`
	Address      string          `gorm:"type:text"`
	LogoURL      string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new active store owned by the given user
func NewStore(ownerID uuid.UUID, slug, name string) (*Store, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Store owner cannot be empty")
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if err := validateStoreName(name); err != nil {
		return nil, err
	}

	return &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              strings.ToLower(strings.TrimSpace(slug)),
		Name:              strings.TrimSpace(name),
		OwnerID:           ownerID,
		Status:            StoreStatusActive,
		Currency:          "NGN",
		VATRate:           DefaultVATRate,
	}, nil
}

// Update updates the store's basic information
func (s *Store) Update(name, description string) error {
	if err := validateStoreName(name); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(name)
	s.Description = description
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetContact sets contact details
func (s *Store) SetContact(phone, email, address string) error {
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	s.ContactPhone = strings.TrimSpace(phone)
	s.ContactEmail = strings.ToLower(strings.TrimSpace(email))
	s.Address = address
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetVATRate sets the store's VAT rate. The rate is a fraction, not a
// percentage: 7.5% VAT is 0.075.
func (s *Store) SetVATRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate cannot be negative")
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be a fraction between 0 and 1")
	}
	s.VATRate = rate
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetLogoURL sets the store logo URL
func (s *Store) SetLogoURL(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Logo URL cannot exceed 500 characters")
	}
	s.LogoURL = url
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Activate transitions the store to active status
func (s *Store) Activate() error {
	if s.Status == StoreStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Store is already active")
	}
	s.Status = StoreStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate transitions the store to inactive status
func (s *Store) Deactivate() error {
	if s.Status == StoreStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Store is already inactive")
	}
	s.Status = StoreStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Suspend suspends the store
func (s *Store) Suspend() error {
	if s.Status == StoreStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Store is already suspended")
	}
	s.Status = StoreStatusSuspended
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// IsActive returns true if the store is active
func (s *Store) IsActive() bool {
	return s.Status == StoreStatusActive
}

// PublicURL returns the storefront URL for the given public host
func (s *Store) PublicURL(host string) string {
	return fmt.Sprintf("https://%s/store/%s", host, s.Slug)
}

func validateSlug(slug string) error {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Store slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewDomainError("INVALID_SLUG", "Store slug cannot exceed 100 characters")
	}
	if !slugPattern.MatchString(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Store slug may only contain lowercase letters, digits and hyphens")
	}
	return nil
}

func validateStoreName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot exceed 200 characters")
	}
	return nil
}
