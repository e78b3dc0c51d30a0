package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/adapters/storage"
	"servicehub/internal/core/domain"
	"servicehub/internal/pkg/metrics"
	"servicehub/internal/pkg/sl"

	"gorm.io/gorm"
)

// PhotoUpload is an uploaded photo. A nil *PhotoUpload means "keep the current photo".
type PhotoUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// ProviderService manages provider records owned by accounts
type ProviderService struct {
	providerRepo repositories.ProviderRepository
	userRepo     repositories.UserRepository
	accounts     *AccountService
	photos       storage.PhotoStore
	listings     *ListingCache
	metrics      *metrics.Metrics
	log          *slog.Logger
}

// NewProviderService creates a new provider service
func NewProviderService(
	providerRepo repositories.ProviderRepository,
	userRepo repositories.UserRepository,
	accounts *AccountService,
	photos storage.PhotoStore,
	listings *ListingCache,
	m *metrics.Metrics,
	log *slog.Logger,
) *ProviderService {
	return &ProviderService{
		providerRepo: providerRepo,
		userRepo:     userRepo,
		accounts:     accounts,
		photos:       photos,
		listings:     listings,
		metrics:      m,
		log:          log,
	}
}

// Register creates the provider record of userID in pending status.
// The photo is written first; if the record cannot be written the photo is removed again
// unless another record of the same account already references it.
func (s *ProviderService) Register(ctx context.Context, userID uint, fields domain.ProviderFields, photo *PhotoUpload) (*models.ProviderResponse, error) {
	const op = "services.ProviderService.Register"

	if err := validateFields(fields); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.providerRepo.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return nil, domain.ErrProviderAlreadyExists
	}

	provider := &models.Provider{
		UserID:  userID,
		Status:  string(domain.ProviderPending),
		Version: 1,
	}
	provider.ApplyFields(fields)

	if photo != nil {
		name, err := s.savePhoto(ctx, userID, photo)
		if err != nil {
			return nil, err
		}
		provider.Photo = name
	}

	if err := s.providerRepo.Create(ctx, provider); err != nil {
		// a concurrent registration of the same account won the unique index
		existing, lookupErr := s.providerRepo.GetByUserID(ctx, userID)
		if lookupErr == nil {
			if existing.Photo != provider.Photo {
				s.discardPhoto(ctx, provider.Photo)
			}
			return nil, domain.ErrProviderAlreadyExists
		}
		s.discardPhoto(ctx, provider.Photo)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrProviderAlreadyExists
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.listings.invalidate(ctx)
	s.metrics.ProviderRegistered()
	s.log.Info("provider registered",
		slog.Uint64("provider_id", uint64(provider.ID)),
		slog.Uint64("user_id", uint64(userID)),
	)
	return provider.ToResponse(s.photos.URL), nil
}

// Update overwrites the fields of userID's record. A nil photo keeps the current one.
func (s *ProviderService) Update(ctx context.Context, userID uint, fields domain.ProviderFields, photo *PhotoUpload) (*models.ProviderResponse, error) {
	const op = "services.ProviderService.Update"

	if err := validateFields(fields); err != nil {
		return nil, err
	}

	provider, err := s.providerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	previous := provider.Photo
	if photo != nil {
		name, err := s.savePhoto(ctx, userID, photo)
		if err != nil {
			return nil, err
		}
		provider.Photo = name
	}
	provider.ApplyFields(fields)

	if err := s.providerRepo.Update(ctx, provider); err != nil {
		// an asset under the old name was overwritten in place and cannot be restored
		if provider.Photo != previous {
			s.discardPhoto(ctx, provider.Photo)
		}
		if errors.Is(err, repositories.ErrStaleVersion) {
			return nil, domain.ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if previous != "" && provider.Photo != previous {
		s.discardPhoto(ctx, previous)
	}

	s.listings.invalidate(ctx)
	return provider.ToResponse(s.photos.URL), nil
}

// AdminEdit overwrites the fields of a record by id. Status and photo are left unchanged.
func (s *ProviderService) AdminEdit(ctx context.Context, providerID uint, fields domain.ProviderFields) (*models.ProviderResponse, error) {
	const op = "services.ProviderService.AdminEdit"

	if err := validateFields(fields); err != nil {
		return nil, err
	}

	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	provider.ApplyFields(fields)
	if err := s.providerRepo.Update(ctx, provider); err != nil {
		if errors.Is(err, repositories.ErrStaleVersion) {
			return nil, domain.ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.listings.invalidate(ctx)
	return provider.ToResponse(s.photos.URL), nil
}

// Delete removes a provider record together with the owning account
func (s *ProviderService) Delete(ctx context.Context, providerID uint) error {
	const op = "services.ProviderService.Delete"

	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProviderNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.accounts.DeleteAccount(ctx, provider.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		// the owning account is already gone
		err = s.accounts.removeProvider(ctx, provider)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetByUserID returns the record owned by userID
func (s *ProviderService) GetByUserID(ctx context.Context, userID uint) (*models.ProviderResponse, error) {
	provider, err := s.providerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("services.ProviderService.GetByUserID: %w", err)
	}
	return provider.ToResponse(s.photos.URL), nil
}

func (s *ProviderService) savePhoto(ctx context.Context, userID uint, photo *PhotoUpload) (string, error) {
	name, err := storage.PhotoName(userID, photo.Filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	contentType := photo.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentType(name)
	}

	if err := s.photos.Save(ctx, name, photo.Content, photo.Size, contentType); err != nil {
		s.metrics.PhotoUpload(false)
		return "", fmt.Errorf("services.ProviderService.savePhoto: %w", err)
	}
	s.metrics.PhotoUpload(true)
	return name, nil
}

// discardPhoto removes an asset that is no longer referenced; failures are logged only
func (s *ProviderService) discardPhoto(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.photos.Delete(ctx, name); err != nil {
		s.log.Error("failed to remove photo", slog.String("photo", name), sl.Err(err))
	}
}

func validateFields(f domain.ProviderFields) error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Service) == "" {
		return fmt.Errorf("%w: name and service are required", domain.ErrInvalidInput)
	}
	return nil
}
