package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/shared"
)

// AllowedImageContentTypes defines the whitelist of content types accepted
// for product images. SVG is explicitly NOT allowed due to XSS risk (can
// contain <script> tags and inline event handlers).
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// ImageStorageService defines the interface for product image storage.
// This interface is implemented by the infrastructure layer (S3-compatible storage).
type ImageStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading an image
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, imageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for serving an image
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, imageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an image from storage
	DeleteObject(ctx context.Context, imageKey string) error

	// ObjectExists checks if an image exists in storage
	ObjectExists(ctx context.Context, imageKey string) (bool, error)
}

// ImageServiceConfig holds configuration for the image service
type ImageServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxFileSize is the maximum accepted image size in bytes
	MaxFileSize int64
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
		MaxFileSize:       5 * 1024 * 1024,
	}
}

// ImageService handles product image upload and serving
type ImageService struct {
	productRepo    catalog.ProductRepository
	storageService ImageStorageService
	config         ImageServiceConfig
}

// NewImageService creates a new ImageService
func NewImageService(productRepo catalog.ProductRepository, storageService ImageStorageService) *ImageService {
	return &ImageService{
		productRepo:    productRepo,
		storageService: storageService,
		config:         DefaultImageServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *ImageService) SetConfig(config ImageServiceConfig) {
	s.config = config
}

// InitiateUpload generates a presigned upload URL for a product image.
// The caller uploads directly to storage, then calls ConfirmUpload.
func (s *ImageService) InitiateUpload(
	ctx context.Context,
	storeID, productID uuid.UUID,
	req InitiateImageUploadRequest,
) (*InitiateImageUploadResponse, error) {
	_, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	if !isAllowedImageContentType(req.ContentType) {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed for product images", req.ContentType))
	}
	if req.FileSize <= 0 || req.FileSize > s.config.MaxFileSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE",
			fmt.Sprintf("Image size must be between 1 byte and %d bytes", s.config.MaxFileSize))
	}

	imageKey := s.generateImageKey(storeID, productID, req.FileName)

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(
		ctx,
		imageKey,
		req.ContentType,
		s.config.UploadURLExpiry,
	)
	if err != nil {
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateImageUploadResponse{
		ImageKey:  imageKey,
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmUpload verifies the image exists in storage and attaches it to the product.
// Any previously attached image is deleted from storage on a best-effort basis.
func (s *ImageService) ConfirmUpload(
	ctx context.Context,
	storeID, productID uuid.UUID,
	imageKey string,
) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	// Keys are namespaced per store; reject keys that point elsewhere
	if !strings.HasPrefix(imageKey, s.imageKeyPrefix(storeID, productID)) {
		return nil, shared.NewDomainError("INVALID_IMAGE_KEY", "Image key does not belong to this product")
	}

	exists, err := s.storageService.ObjectExists(ctx, imageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND",
			"Image not found in storage. Please upload the file first.")
	}

	previousKey := product.ImageKey
	if err := product.SetImageKey(imageKey); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	if previousKey != "" && previousKey != imageKey {
		_ = s.storageService.DeleteObject(ctx, previousKey)
	}

	response := ToProductResponse(product)
	s.enrichWithImageURL(ctx, &response, product)
	return &response, nil
}

// RemoveImage detaches and deletes the product's image.
func (s *ImageService) RemoveImage(ctx context.Context, storeID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForStore(ctx, storeID, productID)
	if err != nil {
		return err
	}
	if product.ImageKey == "" {
		return nil
	}

	imageKey := product.ImageKey
	if err := product.SetImageKey(""); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	_ = s.storageService.DeleteObject(ctx, imageKey)
	return nil
}

// ImageURL returns a presigned download URL for a product's image,
// or an empty string when the product has no image.
func (s *ImageService) ImageURL(ctx context.Context, product *catalog.Product) string {
	if product == nil || product.ImageKey == "" {
		return ""
	}
	url, _, err := s.storageService.GenerateDownloadURL(ctx, product.ImageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return ""
	}
	return url
}

func (s *ImageService) enrichWithImageURL(ctx context.Context, response *ProductResponse, product *catalog.Product) {
	response.ImageURL = s.ImageURL(ctx, product)
}

func (s *ImageService) imageKeyPrefix(storeID, productID uuid.UUID) string {
	return fmt.Sprintf("stores/%s/products/%s/", storeID.String(), productID.String())
}

// generateImageKey generates a unique storage key for a product image.
// Format: stores/{storeID}/products/{productID}/{uniqueID}{ext}
func (s *ImageService) generateImageKey(storeID, productID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return s.imageKeyPrefix(storeID, productID) + uuid.New().String() + ext
}

// isAllowedImageContentType checks if a content type is in the whitelist
func isAllowedImageContentType(contentType string) bool {
	return AllowedImageContentTypes[strings.ToLower(contentType)]
}
