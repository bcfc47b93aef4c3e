package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// StoreService manages store settings
type StoreService struct {
	storeRepo  identity.StoreRepository
	publicHost string
	logger     *zap.Logger
}

// NewStoreService creates a new StoreService
func NewStoreService(storeRepo identity.StoreRepository, publicHost string, logger *zap.Logger) *StoreService {
	return &StoreService{
		storeRepo:  storeRepo,
		publicHost: publicHost,
		logger:     logger,
	}
}

// GetStore returns the store by ID
func (s *StoreService) GetStore(ctx context.Context, storeID uuid.UUID) (*StoreInfo, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	info := ToStoreInfo(store, s.publicHost)
	return &info, nil
}

// GetStoreBySlug returns the store by its public slug
func (s *StoreService) GetStoreBySlug(ctx context.Context, slug string) (*StoreInfo, error) {
	store, err := s.storeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	info := ToStoreInfo(store, s.publicHost)
	return &info, nil
}

// UpdateStore updates the store's settings
func (s *StoreService) UpdateStore(ctx context.Context, input UpdateStoreInput) (*StoreInfo, error) {
	store, err := s.storeRepo.FindByID(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}

	if err := store.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := store.SetContact(input.ContactPhone, input.ContactEmail, input.Address); err != nil {
		return nil, err
	}
	if input.VATRate != nil {
		if err := store.SetVATRate(*input.VATRate); err != nil {
			return nil, err
		}
	}
	if input.LogoURL != nil {
		if err := store.SetLogoURL(*input.LogoURL); err != nil {
			return nil, err
		}
	}

	if err := s.storeRepo.Save(ctx, store); err != nil {
		return nil, err
	}

	s.logger.Info("Store updated", zap.String("store_id", store.ID.String()))

	info := ToStoreInfo(store, s.publicHost)
	return &info, nil
}

// DeactivateStore deactivates the store, hiding its public storefront
func (s *StoreService) DeactivateStore(ctx context.Context, storeID uuid.UUID) error {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return err
	}

	if err := store.Deactivate(); err != nil {
		return err
	}
	if err := s.storeRepo.Save(ctx, store); err != nil {
		return err
	}

	s.logger.Info("Store deactivated", zap.String("store_id", storeID.String()))
	return nil
}

// ActivateStore reactivates a deactivated store
func (s *StoreService) ActivateStore(ctx context.Context, storeID uuid.UUID) error {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return err
	}

	if err := store.Activate(); err != nil {
		return err
	}
	return s.storeRepo.Save(ctx, store)
}
