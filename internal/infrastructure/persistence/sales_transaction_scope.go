package persistence

import (
	"context"

	appsales "github.com/storelink/backend/internal/application/sales"
	"github.com/storelink/backend/internal/domain/cart"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSalesTransactionScope implements the settlement TransactionScope
// using GORM transactions.
type GormSalesTransactionScope struct {
	db *gorm.DB
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope.
func NewGormSalesTransactionScope(db *gorm.DB) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormSalesTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormSalesTransactionalRepositories provides access to the settlement
// repositories within a transaction.
type gormSalesTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// SaleRepo returns the sale repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// CartRepo returns the cart repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) CartRepo() cart.CartRepository {
	return NewGormCartRepository(r.tx)
}

// UserRepo returns the user repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Ensure GormSalesTransactionScope implements TransactionScope
var _ appsales.TransactionScope = (*GormSalesTransactionScope)(nil)

// Ensure gormSalesTransactionalRepositories implements TransactionalRepositories
var _ appsales.TransactionalRepositories = (*gormSalesTransactionalRepositories)(nil)
