package repositories

import (
	"context"

	"servicehub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// complaintRepository implements ComplaintRepository interface
type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

// Create files a complaint
func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

// UpdateStatus sets the status of a complaint
func (r *complaintRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.db.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListWithNames lists complaints joined with submitter username and provider name.
// Rows whose account or provider is gone keep empty names.
func (r *complaintRepository) ListWithNames(ctx context.Context) ([]*models.ComplaintView, error) {
	var views []*models.ComplaintView
	err := r.db.WithContext(ctx).
		Table("complaints AS c").
		Select(`c.id, c.user_id, COALESCE(a.username, '') AS username,
			c.provider_id, COALESCE(p.name, '') AS provider_name,
			c.complaint, c.status, c.created_at`).
		Joins("LEFT JOIN auth a ON a.id = c.user_id").
		Joins("LEFT JOIN providers p ON p.id = c.provider_id").
		Order("c.id DESC").
		Scan(&views).Error
	return views, err
}
