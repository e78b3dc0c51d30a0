package config

import (
	"errors"
	"log"

	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/core/domain"
	"servicehub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db    *gorm.DB
	admin AdminConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, admin AdminConfig) *Seeder {
	return &Seeder{db: db, admin: admin}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the admin account unless one already holds the admin role
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var existing models.User
	err := s.db.Where("username = ? OR email = ?", s.admin.Username, s.admin.Email).First(&existing).Error
	if err == nil {
		log.Printf("⚠️ Skipping admin seed: account '%s' already exists without admin role", existing.Username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := password.Hash(s.admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: s.admin.Username,
		Email:    s.admin.Email,
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}
