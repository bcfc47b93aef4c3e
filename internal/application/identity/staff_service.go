package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StaffService manages the staff accounts of a store
type StaffService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewStaffService creates a new StaffService
func NewStaffService(userRepo identity.UserRepository, logger *zap.Logger) *StaffService {
	return &StaffService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateStaff creates a manager or cashier account attached to the store.
// Owner accounts are only created through business registration.
func (s *StaffService) CreateStaff(ctx context.Context, input CreateStaffInput) (*UserInfo, error) {
	if input.Role != identity.RoleManager && input.Role != identity.RoleCashier {
		return nil, shared.NewDomainError("INVALID_ROLE", "Staff role must be manager or cashier")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewStaff(input.StoreID, input.Email, input.Password, input.DisplayName, input.Role)
	if err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := user.SetPhone(input.Phone); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Staff account created",
		zap.String("email", user.Email),
		zap.String("store_id", input.StoreID.String()),
		zap.String("role", string(input.Role)))

	info := ToUserInfo(user)
	return &info, nil
}

// ListStaff returns a page of the store's staff members
func (s *StaffService) ListStaff(ctx context.Context, input ListStaffInput) (*StaffListResult, error) {
	filter := identity.NewUserFilter().
		WithKeyword(input.Keyword).
		WithPagination(input.Page, input.PageSize)
	if input.Role != "" {
		role := identity.Role(input.Role)
		if !role.Valid() || !role.IsStaff() {
			return nil, shared.NewDomainError("INVALID_ROLE", "Unknown staff role")
		}
		filter = filter.WithRole(role)
	}
	if input.Status != "" {
		filter = filter.WithStatus(identity.UserStatus(input.Status))
	}

	users, total, err := s.userRepo.FindByStore(ctx, input.StoreID, filter)
	if err != nil {
		return nil, err
	}

	staff := make([]UserInfo, 0, len(users))
	for _, user := range users {
		staff = append(staff, ToUserInfo(user))
	}

	return &StaffListResult{
		Staff:    staff,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// DeactivateStaff deactivates a staff member of the store
func (s *StaffService) DeactivateStaff(ctx context.Context, storeID, userID uuid.UUID) error {
	user, err := s.findStoreStaff(ctx, storeID, userID)
	if err != nil {
		return err
	}
	if user.Role == identity.RoleOwner {
		return shared.NewDomainError("INVALID_OPERATION", "The store owner cannot be deactivated")
	}

	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Staff account deactivated",
		zap.String("user_id", userID.String()),
		zap.String("store_id", storeID.String()))
	return nil
}

// ReactivateStaff reactivates a deactivated staff member
func (s *StaffService) ReactivateStaff(ctx context.Context, storeID, userID uuid.UUID) error {
	user, err := s.findStoreStaff(ctx, storeID, userID)
	if err != nil {
		return err
	}

	if err := user.Activate(); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user)
}

// ChangeStaffRole reassigns a staff member between manager and cashier
func (s *StaffService) ChangeStaffRole(ctx context.Context, storeID, userID uuid.UUID, role identity.Role) (*UserInfo, error) {
	if role != identity.RoleManager && role != identity.RoleCashier {
		return nil, shared.NewDomainError("INVALID_ROLE", "Staff role must be manager or cashier")
	}

	user, err := s.findStoreStaff(ctx, storeID, userID)
	if err != nil {
		return nil, err
	}

	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Staff role changed",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)))

	info := ToUserInfo(user)
	return &info, nil
}

// findStoreStaff loads a user and verifies they are staff of the given store
func (s *StaffService) findStoreStaff(ctx context.Context, storeID, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StoreID == nil || *user.StoreID != storeID {
		return nil, shared.ErrNotFound
	}
	return user, nil
}
