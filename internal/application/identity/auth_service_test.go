package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/infrastructure/auth"
	"github.com/storelink/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockStoreRepository is a mock implementation of identity.StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Store), args.Error(1)
}

func (m *MockStoreRepository) FindBySlug(ctx context.Context, slug string) (*identity.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*identity.Store, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Store), args.Error(1)
}

func (m *MockStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Store, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Store), args.Error(1)
}

func (m *MockStoreRepository) Save(ctx context.Context, store *identity.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoreRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-testing-only",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "storelink-test",
	})
}

func newTestAuthService(userRepo *MockUserRepository, storeRepo *MockStoreRepository) *AuthService {
	return NewAuthService(
		userRepo,
		storeRepo,
		NewNoOpTransactionScope(userRepo, storeRepo),
		newTestJWTService(),
		auth.NewInMemoryTokenBlacklist(),
		DefaultAuthServiceConfig(),
		zap.NewNop(),
	)
}

func newTestCustomer(t *testing.T, email, password string) *identity.User {
	t.Helper()
	user, err := identity.NewCustomer(email, password, "Test User")
	require.NoError(t, err)
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	user := newTestCustomer(t, "ada@example.com", "password123")
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	result, err := service.Login(context.Background(), LoginInput{
		Email:    "ada@example.com",
		Password: "password123",
		IP:       "10.0.0.1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, identity.RoleCustomer, result.User.Role)
	assert.Equal(t, "10.0.0.1", user.LastLoginIP)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	user := newTestCustomer(t, "ada@example.com", "password123")
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	assert.Equal(t, 1, user.FailedAttempts)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, shared.ErrNotFound)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever1",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	// Unknown email and wrong password are indistinguishable to the caller
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestAuthService_Login_LocksAfterMaxAttempts(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	user := newTestCustomer(t, "ada@example.com", "password123")
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	var lastErr error
	for i := 0; i < DefaultAuthServiceConfig().MaxLoginAttempts; i++ {
		_, lastErr = service.Login(context.Background(), LoginInput{
			Email:    "ada@example.com",
			Password: "wrong-password",
		})
	}

	var domainErr *shared.DomainError
	require.ErrorAs(t, lastErr, &domainErr)
	assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	assert.True(t, user.IsLocked())

	// Even the correct password is rejected while locked
	_, err := service.Login(context.Background(), LoginInput{
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	user := newTestCustomer(t, "ada@example.com", "password123")
	require.NoError(t, user.Deactivate())
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "ada@example.com",
		Password: "password123",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", domainErr.Code)
}

func TestAuthService_RegisterCustomer(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	result, err := service.RegisterCustomer(context.Background(), RegisterCustomerInput{
		Email:       "new@example.com",
		Password:    "password123",
		DisplayName: "New Customer",
	})

	require.NoError(t, err)
	assert.Equal(t, identity.RoleCustomer, result.User.Role)
	assert.Nil(t, result.User.StoreID)
	assert.NotEmpty(t, result.AccessToken)
	userRepo.AssertExpectations(t)
}

func TestAuthService_RegisterCustomer_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := service.RegisterCustomer(context.Background(), RegisterCustomerInput{
		Email:       "taken@example.com",
		Password:    "password123",
		DisplayName: "Dup",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterBusiness(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	userRepo.On("ExistsByEmail", mock.Anything, "owner@example.com").Return(false, nil)
	storeRepo.On("ExistsBySlug", mock.Anything, "lagos-gadgets").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)
	storeRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Store")).Return(nil)
	userRepo.On("Update", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	result, err := service.RegisterBusiness(context.Background(), RegisterBusinessInput{
		Email:       "owner@example.com",
		Password:    "password123",
		DisplayName: "Chidi",
		StoreName:   "Lagos Gadgets",
		StoreSlug:   "lagos-gadgets",
	})

	require.NoError(t, err)
	assert.Equal(t, identity.RoleOwner, result.User.Role)
	assert.Equal(t, "lagos-gadgets", result.Store.Slug)
	assert.Equal(t, "NGN", result.Store.Currency)
	assert.True(t, result.Store.VATRate.Equal(identity.DefaultVATRate))
	assert.Contains(t, result.Store.PublicURL, "/store/lagos-gadgets")
	require.NotNil(t, result.User.StoreID)
	assert.Equal(t, result.Store.ID, *result.User.StoreID)
	userRepo.AssertExpectations(t)
	storeRepo.AssertExpectations(t)
}

func TestAuthService_RegisterBusiness_SlugTaken(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	userRepo.On("ExistsByEmail", mock.Anything, "owner@example.com").Return(false, nil)
	storeRepo.On("ExistsBySlug", mock.Anything, "taken-slug").Return(true, nil)

	_, err := service.RegisterBusiness(context.Background(), RegisterBusinessInput{
		Email:       "owner@example.com",
		Password:    "password123",
		DisplayName: "Chidi",
		StoreName:   "Shop",
		StoreSlug:   "taken-slug",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RefreshToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	user := newTestCustomer(t, "ada@example.com", "password123")
	pair, err := newTestJWTService().GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	require.NoError(t, err)

	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	result, err := service.RefreshToken(context.Background(), RefreshTokenInput{
		RefreshToken: pair.RefreshToken,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
}

func TestAuthService_RefreshToken_Invalid(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	_, err := service.RefreshToken(context.Background(), RefreshTokenInput{
		RefreshToken: "not-a-token",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
}

func TestAuthService_ChangePassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	user := newTestCustomer(t, "ada@example.com", "password123")
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	err := service.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "password123",
		NewPassword: "new-password-456",
	})

	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("new-password-456"))
	assert.False(t, user.VerifyPassword("password123"))
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	storeRepo := new(MockStoreRepository)
	service := newTestAuthService(userRepo, storeRepo)

	user := newTestCustomer(t, "ada@example.com", "password123")
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	err := service.ChangePassword(context.Background(), ChangePasswordInput{
		UserID:      user.ID,
		OldPassword: "wrong",
		NewPassword: "new-password-456",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestStaffService_CreateStaff(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewStaffService(userRepo, zap.NewNop())
	storeID := uuid.New()

	userRepo.On("ExistsByEmail", mock.Anything, "cashier@example.com").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	info, err := service.CreateStaff(context.Background(), CreateStaffInput{
		StoreID:     storeID,
		Email:       "cashier@example.com",
		Password:    "password123",
		DisplayName: "Till One",
		Role:        identity.RoleCashier,
	})

	require.NoError(t, err)
	assert.Equal(t, identity.RoleCashier, info.Role)
	require.NotNil(t, info.StoreID)
	assert.Equal(t, storeID, *info.StoreID)
}

func TestStaffService_CreateStaff_RejectsOwnerRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewStaffService(userRepo, zap.NewNop())

	_, err := service.CreateStaff(context.Background(), CreateStaffInput{
		StoreID:     uuid.New(),
		Email:       "second-owner@example.com",
		Password:    "password123",
		DisplayName: "Nope",
		Role:        identity.RoleOwner,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestStaffService_DeactivateStaff_WrongStore(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewStaffService(userRepo, zap.NewNop())

	otherStore := uuid.New()
	staff, err := identity.NewStaff(otherStore, "cashier@example.com", "password123", "Till One", identity.RoleCashier)
	require.NoError(t, err)
	userRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)

	err = service.DeactivateStaff(context.Background(), uuid.New(), staff.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
