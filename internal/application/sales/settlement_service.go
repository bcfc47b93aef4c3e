package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/identity"
	"github.com/storelink/backend/internal/domain/sales"
	"github.com/storelink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SettlementMetrics receives one record per settled sale. Implemented
// by the telemetry layer; absent in tests and when metrics are off.
type SettlementMetrics interface {
	RecordSaleSettled(ctx context.Context, storeID uuid.UUID, channel string, total decimal.Decimal, took time.Duration)
}

// SettlementService settles sales. All three entry points (guest checkout,
// checkout with account creation, POS sale) converge on one settle path:
// validate lines against the live catalog, price from stored unit prices,
// compute VAT, persist the immutable sale and decrement stock — all inside
// a single database transaction. A failed settlement changes nothing.
type SettlementService struct {
	storeRepo identity.StoreRepository
	txScope   TransactionScope
	logger    *zap.Logger
	metrics   SettlementMetrics
}

// SettlementServiceOption configures optional SettlementService
// collaborators.
type SettlementServiceOption func(*SettlementService)

// WithSettlementMetrics records settlement counters on every settled
// sale.
func WithSettlementMetrics(m SettlementMetrics) SettlementServiceOption {
	return func(s *SettlementService) {
		s.metrics = m
	}
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(storeRepo identity.StoreRepository, txScope TransactionScope, logger *zap.Logger, opts ...SettlementServiceOption) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SettlementService{
		storeRepo: storeRepo,
		txScope:   txScope,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// settleInput is the collapsed parameter set shared by all entry points
type settleInput struct {
	store           *identity.Store
	lines           []SaleLineRequest
	customer        sales.Customer
	channel         sales.Channel
	payment         sales.PaymentMethod
	delivery        sales.DeliveryType
	deliveryAddress string
	soldBy          *uuid.UUID
	newAccount      *AccountCheckoutRequest
}

// SettleGuestCheckout settles an online sale for an unauthenticated buyer
// identified only by the contact snapshot on the request.
func (s *SettlementService) SettleGuestCheckout(ctx context.Context, storeSlug string, req GuestCheckoutRequest) (*SaleResponse, error) {
	store, err := s.resolveStore(ctx, storeSlug)
	if err != nil {
		return nil, err
	}

	return s.settle(ctx, settleInput{
		store: store,
		lines: req.Items,
		customer: sales.Customer{
			Name:  req.CustomerName,
			Phone: req.CustomerPhone,
			Email: req.CustomerEmail,
		},
		channel:         sales.ChannelOnline,
		payment:         req.PaymentMethod,
		delivery:        req.DeliveryType,
		deliveryAddress: req.DeliveryAddress,
	})
}

// SettleAccountCheckout settles an online sale and creates the buyer's
// customer account. Account creation joins the settlement transaction: if
// the sale fails, no account is created.
func (s *SettlementService) SettleAccountCheckout(ctx context.Context, storeSlug string, req AccountCheckoutRequest) (*AccountCheckoutResult, error) {
	store, err := s.resolveStore(ctx, storeSlug)
	if err != nil {
		return nil, err
	}

	sale, err := s.settle(ctx, settleInput{
		store: store,
		lines: req.Items,
		customer: sales.Customer{
			Name:  req.DisplayName,
			Phone: req.Phone,
			Email: req.Email,
		},
		channel:         sales.ChannelOnline,
		payment:         req.PaymentMethod,
		delivery:        req.DeliveryType,
		deliveryAddress: req.DeliveryAddress,
		newAccount:      &req,
	})
	if err != nil {
		return nil, err
	}

	return &AccountCheckoutResult{
		Sale:      *sale,
		UserID:    *sale.CustomerID,
		UserEmail: req.Email,
	}, nil
}

// SettleCustomerCheckout settles an online sale for an authenticated
// customer. Their cart is cleared in the same transaction.
func (s *SettlementService) SettleCustomerCheckout(ctx context.Context, storeSlug string, customer *identity.User, req GuestCheckoutRequest) (*SaleResponse, error) {
	store, err := s.resolveStore(ctx, storeSlug)
	if err != nil {
		return nil, err
	}

	customerID := customer.ID
	attribution := sales.Customer{
		CustomerID: &customerID,
		Name:       req.CustomerName,
		Phone:      req.CustomerPhone,
		Email:      req.CustomerEmail,
	}
	if attribution.Name == "" {
		attribution.Name = customer.GetDisplayNameOrEmail()
	}
	if attribution.Email == "" {
		attribution.Email = customer.Email
	}

	return s.settle(ctx, settleInput{
		store:           store,
		lines:           req.Items,
		customer:        attribution,
		channel:         sales.ChannelOnline,
		payment:         req.PaymentMethod,
		delivery:        req.DeliveryType,
		deliveryAddress: req.DeliveryAddress,
	})
}

// SettlePOSSale settles an in-store sale rung up by a staff member.
// Delivery defaults to pickup; customer attribution is optional.
func (s *SettlementService) SettlePOSSale(ctx context.Context, storeID, staffID uuid.UUID, req POSSaleRequest) (*SaleResponse, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.IsActive() {
		return nil, shared.ErrNotFound
	}

	delivery := req.DeliveryType
	if delivery == "" {
		delivery = sales.DeliveryPickup
	}

	return s.settle(ctx, settleInput{
		store: store,
		lines: req.Items,
		customer: sales.Customer{
			CustomerID: req.CustomerID,
			Name:       req.CustomerName,
			Phone:      req.CustomerPhone,
			Email:      req.CustomerEmail,
		},
		channel:         sales.ChannelPOS,
		payment:         req.PaymentMethod,
		delivery:        delivery,
		deliveryAddress: req.DeliveryAddress,
		soldBy:          &staffID,
	})
}

// resolveStore loads an active store by slug. Inactive stores are
// indistinguishable from absent ones.
func (s *SettlementService) resolveStore(ctx context.Context, slug string) (*identity.Store, error) {
	store, err := s.storeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !store.IsActive() {
		return nil, shared.ErrNotFound
	}
	return store, nil
}

func (s *SettlementService) settle(ctx context.Context, in settleInput) (*SaleResponse, error) {
	if len(in.lines) == 0 {
		return nil, shared.NewDomainError("VALIDATION", "Sale must have at least one item")
	}

	merged, err := mergeLines(in.lines)
	if err != nil {
		return nil, err
	}

	started := time.Now()

	var sale *sales.Sale
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		customer := in.customer
		if in.newAccount != nil {
			account, err := s.createCustomerAccount(ctx, repos, in.newAccount)
			if err != nil {
				return err
			}
			accountID := account.ID
			customer.CustomerID = &accountID
		}

		products, err := s.loadSaleProducts(ctx, repos, in.store.ID, merged)
		if err != nil {
			return err
		}

		for _, line := range merged {
			product := products[line.ProductID]
			if product.StockQuantity < line.Quantity {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Insufficient stock for '%s': %d available, %d requested",
						product.Name, product.StockQuantity, line.Quantity))
			}
		}

		sale, err = sales.NewSale(in.store.ID, customer, in.channel, in.payment, in.delivery, in.deliveryAddress, in.store.VATRate)
		if err != nil {
			return err
		}
		if in.soldBy != nil {
			sale.SetSoldBy(*in.soldBy)
		}

		for _, line := range merged {
			product := products[line.ProductID]
			if err := sale.AddItem(product.ID, product.Name, product.SKU, product.Price, line.Quantity); err != nil {
				return err
			}
		}
		if err := sale.Finalize(); err != nil {
			return err
		}

		if err := s.persistWithUniqueCode(ctx, repos, sale); err != nil {
			return err
		}

		// Conditional decrement is the oversell guard: a concurrent
		// settlement that drained the stock makes this fail and roll
		// everything back, sale row included.
		for _, line := range merged {
			if err := repos.ProductRepo().DecrementStock(ctx, in.store.ID, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					product := products[line.ProductID]
					return shared.NewDomainError("INSUFFICIENT_STOCK",
						fmt.Sprintf("Insufficient stock for '%s'", product.Name))
				}
				return err
			}
		}

		if customer.CustomerID != nil {
			if err := repos.CartRepo().Delete(ctx, *customer.CustomerID); err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleSettled(ctx, in.store.ID, string(sale.Channel), sale.Total, time.Since(started))
	}

	s.logger.Info("Sale settled",
		zap.String("store_id", in.store.ID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("display_code", sale.DisplayCode),
		zap.String("channel", string(sale.Channel)),
		zap.String("total", sale.Total.String()))

	response := ToSaleResponse(sale)
	return &response, nil
}

// createCustomerAccount creates the buyer's account inside the settlement
// transaction
func (s *SettlementService) createCustomerAccount(ctx context.Context, repos TransactionalRepositories, req *AccountCheckoutRequest) (*identity.User, error) {
	exists, err := repos.UserRepo().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	account, err := identity.NewCustomer(req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := account.SetPhone(req.Phone); err != nil {
			return nil, err
		}
	}

	if err := repos.UserRepo().Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// loadSaleProducts fetches the referenced products scoped to the store.
// Any id that is missing, cross-tenant or inactive fails validation with
// one indistinguishable error.
func (s *SettlementService) loadSaleProducts(ctx context.Context, repos TransactionalRepositories, storeID uuid.UUID, lines []SaleLineRequest) (map[uuid.UUID]catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := repos.ProductRepo().FindByIDs(ctx, storeID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, product := range products {
		if product.IsActive() {
			byID[product.ID] = product
		}
	}

	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return nil, shared.NewDomainError("VALIDATION",
				fmt.Sprintf("Product %s is not available in this store", line.ProductID))
		}
	}
	return byID, nil
}

// persistWithUniqueCode creates the sale, regenerating the display code
// once on a collision. The per-store unique index is the real guarantee.
func (s *SettlementService) persistWithUniqueCode(ctx context.Context, repos TransactionalRepositories, sale *sales.Sale) error {
	exists, err := repos.SaleRepo().ExistsByDisplayCode(ctx, sale.StoreID, sale.DisplayCode)
	if err != nil {
		return err
	}
	if exists {
		sale.RegenerateDisplayCode()
	}

	if err := repos.SaleRepo().Create(ctx, sale); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			sale.RegenerateDisplayCode()
			return repos.SaleRepo().Create(ctx, sale)
		}
		return err
	}
	return nil
}

// mergeLines validates quantities and merges duplicate product ids by
// summing their quantities, preserving first-seen order.
func mergeLines(lines []SaleLineRequest) ([]SaleLineRequest, error) {
	merged := make(map[uuid.UUID]int64, len(lines))
	order := make([]uuid.UUID, 0, len(lines))

	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("VALIDATION", "Sale line product cannot be empty")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("VALIDATION", "Sale line quantity must be positive")
		}
		if _, seen := merged[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		merged[line.ProductID] += line.Quantity
	}

	result := make([]SaleLineRequest, 0, len(order))
	for _, productID := range order {
		result = append(result, SaleLineRequest{ProductID: productID, Quantity: merged[productID]})
	}
	return result, nil
}
