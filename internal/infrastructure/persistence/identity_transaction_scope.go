package persistence

import (
	"context"

	appidentity "github.com/storelink/backend/internal/application/identity"
	"github.com/storelink/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormIdentityTransactionScope implements the identity TransactionScope
// using GORM transactions.
type GormIdentityTransactionScope struct {
	db *gorm.DB
}

// NewGormIdentityTransactionScope creates a new GormIdentityTransactionScope.
func NewGormIdentityTransactionScope(db *gorm.DB) *GormIdentityTransactionScope {
	return &GormIdentityTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormIdentityTransactionScope) Execute(ctx context.Context, fn func(repos appidentity.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormIdentityTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormIdentityTransactionalRepositories provides access to the identity
// repositories within a transaction.
type gormIdentityTransactionalRepositories struct {
	tx *gorm.DB
}

// UserRepo returns the user repository scoped to the current transaction.
func (r *gormIdentityTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// StoreRepo returns the store repository scoped to the current transaction.
func (r *gormIdentityTransactionalRepositories) StoreRepo() identity.StoreRepository {
	return NewGormStoreRepository(r.tx)
}

// Ensure GormIdentityTransactionScope implements TransactionScope
var _ appidentity.TransactionScope = (*GormIdentityTransactionScope)(nil)

// Ensure gormIdentityTransactionalRepositories implements TransactionalRepositories
var _ appidentity.TransactionalRepositories = (*gormIdentityTransactionalRepositories)(nil)
