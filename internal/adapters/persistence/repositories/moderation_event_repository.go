package repositories

import (
	"context"

	"servicehub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// moderationEventRepository implements ModerationEventRepository interface
type moderationEventRepository struct {
	db *gorm.DB
}

// NewModerationEventRepository creates a new moderation event repository
func NewModerationEventRepository(db *gorm.DB) ModerationEventRepository {
	return &moderationEventRepository{db: db}
}

// Create appends an event
func (r *moderationEventRepository) Create(ctx context.Context, event *models.ModerationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByProvider returns the moderation history of a provider, newest first
func (r *moderationEventRepository) ListByProvider(ctx context.Context, providerID uint) ([]*models.ModerationEvent, error) {
	var events []*models.ModerationEvent
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("id DESC").
		Find(&events).Error
	return events, err
}
