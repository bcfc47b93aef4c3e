package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/cart"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CartService manages per-user shopping carts. The cart is a staging area
// only: settlement re-reads products and re-prices every line, so nothing
// stored here is trusted at checkout.
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo cart.CartRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get returns the user's cart with live product data joined in. Users
// without a cart get an empty response rather than a 404.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	userCart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return EmptyCartResponse(), nil
		}
		return nil, err
	}

	products, err := s.loadProducts(ctx, userCart)
	if err != nil {
		return nil, err
	}
	return toCartResponse(userCart, products), nil
}

// Replace discards the user's cart contents and installs the given lines.
// Every referenced product must exist in the store and be active.
func (s *CartService) Replace(ctx context.Context, userID uuid.UUID, req ReplaceCartRequest) (*CartResponse, error) {
	if req.StoreID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store cannot be empty")
	}

	userCart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		userCart, err = cart.NewCart(userID, req.StoreID)
		if err != nil {
			return nil, err
		}
	}

	// Switching stores starts over with a cart bound to the new store
	userCart.StoreID = req.StoreID

	lines := make([]cart.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, cart.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err := userCart.Replace(lines); err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, userCart)
	if err != nil {
		return nil, err
	}
	for _, item := range userCart.Items {
		product, ok := products[item.ProductID]
		if !ok || !product.IsActive() {
			return nil, shared.NewDomainError("VALIDATION",
				fmt.Sprintf("Product %s is not available in this store", item.ProductID))
		}
	}

	if err := s.cartRepo.Save(ctx, userCart); err != nil {
		return nil, err
	}

	s.logger.Debug("Cart replaced",
		zap.String("user_id", userID.String()),
		zap.String("store_id", req.StoreID.String()),
		zap.Int("lines", len(userCart.Items)))

	return toCartResponse(userCart, products), nil
}

// Clear removes the user's cart. Clearing an absent cart is a no-op.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Delete(ctx, userID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}

func (s *CartService) loadProducts(ctx context.Context, userCart *cart.Cart) (map[uuid.UUID]catalog.Product, error) {
	if userCart.IsEmpty() {
		return map[uuid.UUID]catalog.Product{}, nil
	}

	ids := make([]uuid.UUID, 0, len(userCart.Items))
	for _, item := range userCart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, userCart.StoreID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return byID, nil
}
