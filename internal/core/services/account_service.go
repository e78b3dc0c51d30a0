package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/adapters/storage"
	"servicehub/internal/core/domain"
	"servicehub/internal/pkg/pagination"
	"servicehub/internal/pkg/sl"

	"gorm.io/gorm"
)

// AccountService handles account administration and removal
type AccountService struct {
	userRepo         repositories.UserRepository
	providerRepo     repositories.ProviderRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	photos           storage.PhotoStore
	listings         *ListingCache
	log              *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo repositories.UserRepository,
	providerRepo repositories.ProviderRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	photos storage.PhotoStore,
	listings *ListingCache,
	log *slog.Logger,
) *AccountService {
	return &AccountService{
		userRepo:         userRepo,
		providerRepo:     providerRepo,
		refreshTokenRepo: refreshTokenRepo,
		photos:           photos,
		listings:         listings,
		log:              log,
	}
}

// ListAccountsOutput represents a page of accounts
type ListAccountsOutput struct {
	Users []*models.UserResponse `json:"users"`
	Meta  *pagination.Meta       `json:"meta"`
}

// ListAccounts lists accounts ordered by id
func (s *AccountService) ListAccounts(ctx context.Context, page, limit int) (*ListAccountsOutput, error) {
	params := pagination.NewParams(page, limit)

	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("services.AccountService.ListAccounts: %w", err)
	}

	resp := make([]*models.UserResponse, len(users))
	for i, user := range users {
		resp[i] = user.ToResponse()
	}

	return &ListAccountsOutput{
		Users: resp,
		Meta:  pagination.GetMeta(params, total),
	}, nil
}

// SetRole overwrites an account role. An empty role unsets it.
func (s *AccountService) SetRole(ctx context.Context, userID uint, role string) (*models.UserResponse, error) {
	const op = "services.AccountService.SetRole"

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.userRepo.UpdateRole(ctx, userID, string(parsed)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Role = string(parsed)

	s.log.Info("role changed", slog.Uint64("user_id", uint64(userID)), slog.String("role", user.Role))
	return user.ToResponse(), nil
}

// CurrentRole returns the stored role of userID
func (s *AccountService) CurrentRole(ctx context.Context, userID uint) (domain.Role, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RoleNone, domain.ErrUserNotFound
		}
		return domain.RoleNone, fmt.Errorf("services.AccountService.CurrentRole: %w", err)
	}
	return domain.Role(user.Role), nil
}

// DeleteOwnAccount removes the caller's account. Admins cannot remove themselves.
func (s *AccountService) DeleteOwnAccount(ctx context.Context, userID uint) error {
	role, err := s.CurrentRole(ctx, userID)
	if err != nil {
		return err
	}
	if role == domain.RoleAdmin {
		return domain.ErrCannotDeleteSelf
	}
	return s.DeleteAccount(ctx, userID)
}

// RemoveAccount deletes another account on behalf of an admin
func (s *AccountService) RemoveAccount(ctx context.Context, userID, adminID uint) error {
	if userID == adminID {
		return domain.ErrCannotDeleteSelf
	}
	return s.DeleteAccount(ctx, userID)
}

// DeleteAccount removes the provider record, its photo, the sessions and the account, in that order.
// Steps after the provider record are not rolled back; photo and session cleanup failures are only logged.
// Reviews and complaints stay in place.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	const op = "services.AccountService.DeleteAccount"

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	provider, err := s.providerRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if err := s.removeProvider(ctx, provider); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.refreshTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		s.log.Error("failed to delete sessions", slog.Uint64("user_id", uint64(userID)), sl.Err(err))
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("account deleted", slog.Uint64("user_id", uint64(userID)))
	return nil
}

// removeProvider deletes a provider record and then its photo asset
func (s *AccountService) removeProvider(ctx context.Context, provider *models.Provider) error {
	if err := s.providerRepo.Delete(ctx, provider.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	s.listings.invalidate(ctx)

	if provider.Photo != "" {
		if err := s.photos.Delete(ctx, provider.Photo); err != nil {
			s.log.Error("failed to delete provider photo",
				slog.Uint64("provider_id", uint64(provider.ID)),
				slog.String("photo", provider.Photo),
				sl.Err(err),
			)
		}
	}
	return nil
}
