package sales

import (
	"context"

	"github.com/storelink/backend/internal/domain/cart"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories that
// take part in sale settlement. Everything executed within one scope is
// committed or rolled back atomically: stock decrements, the sale row,
// any created customer account and the cart clear all succeed together
// or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the settlement repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() sales.SaleRepository
	// CartRepo returns the cart repository scoped to the current transaction
	CartRepo() cart.CartRepository
	// UserRepo returns the user repository scoped to the current transaction
	UserRepo() identity.UserRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests that assert service behavior without a
// real database transaction.
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	saleRepo    sales.SaleRepository
	cartRepo    cart.CartRepository
	userRepo    identity.UserRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	saleRepo sales.SaleRepository,
	cartRepo cart.CartRepository,
	userRepo identity.UserRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// SaleRepo returns the sale repository.
func (s *NoOpTransactionScope) SaleRepo() sales.SaleRepository {
	return s.saleRepo
}

// CartRepo returns the cart repository.
func (s *NoOpTransactionScope) CartRepo() cart.CartRepository {
	return s.cartRepo
}

// UserRepo returns the user repository.
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository {
	return s.userRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
