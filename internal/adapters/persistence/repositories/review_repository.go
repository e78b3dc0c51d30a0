package repositories

import (
	"context"

	"servicehub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// reviewRepository implements ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create appends a review
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ListLatestPerUser returns the most recent review of every reviewer, newest first
func (r *reviewRepository) ListLatestPerUser(ctx context.Context) ([]*models.Review, error) {
	var reviews []*models.Review

	latest := r.db.Model(&models.Review{}).
		Select("MAX(id)").
		Group("user_id")

	err := r.db.WithContext(ctx).
		Where("id IN (?)", latest).
		Order("id DESC").
		Find(&reviews).Error
	return reviews, err
}
