package identity

import (
	"context"

	"github.com/storelink/backend/internal/domain/identity"
)

// TransactionScope provides transactional access to the identity
// repositories. Business registration creates an owner account and its
// store in one transaction so a slug clash can never leave an orphaned
// user behind.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the identity repositories
// within a transaction.
type TransactionalRepositories interface {
	// UserRepo returns the user repository scoped to the current transaction
	UserRepo() identity.UserRepository
	// StoreRepo returns the store repository scoped to the current transaction
	StoreRepo() identity.StoreRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions.
type NoOpTransactionScope struct {
	userRepo  identity.UserRepository
	storeRepo identity.StoreRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(userRepo identity.UserRepository, storeRepo identity.StoreRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{userRepo: userRepo, storeRepo: storeRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// UserRepo returns the user repository.
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository {
	return s.userRepo
}

// StoreRepo returns the store repository.
func (s *NoOpTransactionScope) StoreRepo() identity.StoreRepository {
	return s.storeRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
