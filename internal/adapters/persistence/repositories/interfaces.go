package repositories

import (
	"context"
	"errors"

	"servicehub/internal/adapters/persistence/models"
)

// ErrStaleVersion is returned by optimistic updates when the row changed since it was read
var ErrStaleVersion = errors.New("stale record version")

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateRole(ctx context.Context, id uint, role string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByRole(ctx context.Context, role string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ProviderFilter narrows provider listings
type ProviderFilter struct {
	Status *string
}

// ProviderRepository defines provider repository interface
type ProviderRepository interface {
	Create(ctx context.Context, provider *models.Provider) error
	GetByID(ctx context.Context, id uint) (*models.Provider, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Provider, error)
	ExistsByUserID(ctx context.Context, userID uint) (bool, error)
	// Update writes profile fields and photo guarded by provider.Version.
	Update(ctx context.Context, provider *models.Provider) error
	// UpdateStatus writes status guarded by version.
	UpdateStatus(ctx context.Context, id, version uint, status string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ProviderFilter, offset, limit int) ([]*models.Provider, int64, error)
	SearchByStatus(ctx context.Context, status, query string) ([]*models.Provider, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	ListPhotos(ctx context.Context) ([]string, error)
}

// ModerationEventRepository defines moderation audit log interface
type ModerationEventRepository interface {
	Create(ctx context.Context, event *models.ModerationEvent) error
	ListByProvider(ctx context.Context, providerID uint) ([]*models.ModerationEvent, error)
}

// ReviewRepository defines review repository interface
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListLatestPerUser(ctx context.Context) ([]*models.Review, error)
}

// ComplaintRepository defines complaint repository interface
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	ListWithNames(ctx context.Context) ([]*models.ComplaintView, error)
}
