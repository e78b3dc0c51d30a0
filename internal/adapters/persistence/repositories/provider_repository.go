package repositories

import (
	"context"
	"strings"

	"servicehub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// providerRepository implements ProviderRepository interface
type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

// Create creates a new provider record
func (r *providerRepository) Create(ctx context.Context, provider *models.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

// GetByID gets a provider by ID
func (r *providerRepository) GetByID(ctx context.Context, id uint) (*models.Provider, error) {
	var provider models.Provider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetByUserID gets the provider record owned by a user
func (r *providerRepository) GetByUserID(ctx context.Context, userID uint) (*models.Provider, error) {
	var provider models.Provider
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// ExistsByUserID checks if a user already owns a provider record
func (r *providerRepository) ExistsByUserID(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Provider{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// Update writes profile fields and photo if the stored version still matches
func (r *providerRepository) Update(ctx context.Context, provider *models.Provider) error {
	res := r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ? AND version = ?", provider.ID, provider.Version).
		Updates(map[string]interface{}{
			"name":         provider.Name,
			"service":      provider.Service,
			"contact":      provider.Contact,
			"location":     provider.Location,
			"experience":   provider.Experience,
			"availability": provider.Availability,
			"rate":         provider.Rate,
			"photo":        provider.Photo,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	provider.Version++
	return nil
}

// UpdateStatus writes the moderation status if the stored version still matches
func (r *providerRepository) UpdateStatus(ctx context.Context, id, version uint, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// Delete removes a provider record
func (r *providerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Provider{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List lists providers with optional status filter and pagination
func (r *providerRepository) List(ctx context.Context, filter ProviderFilter, offset, limit int) ([]*models.Provider, int64, error) {
	var providers []*models.Provider
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Provider{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&providers).Error; err != nil {
		return nil, 0, err
	}

	return providers, total, nil
}

// likeEscaper makes LIKE wildcards in user input match literally. '!' needs no quoting in any supported dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchByStatus returns records in status whose name, service or location contains query (case-insensitive)
func (r *providerRepository) SearchByStatus(ctx context.Context, status, query string) ([]*models.Provider, error) {
	var providers []*models.Provider

	db := r.db.WithContext(ctx).Where("status = ?", status)
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		db = db.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(service) LIKE ? ESCAPE '!' OR LOWER(location) LIKE ? ESCAPE '!')", like, like, like)
	}

	if err := db.Order("id ASC").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

// CountByStatus returns record counts keyed by status
func (r *providerRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	err := r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ListPhotos returns every photo filename still referenced by a provider
func (r *providerRepository) ListPhotos(ctx context.Context) ([]string, error) {
	var photos []string
	err := r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("photo <> ''").
		Pluck("photo", &photos).Error
	return photos, err
}
