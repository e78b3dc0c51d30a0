// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"testing"

	"servicehub/internal/adapters/persistence/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that lives for the duration of the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Factory creates fixture rows
type Factory struct {
	DB *gorm.DB
}

// NewFactory creates a fixture factory over db
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{DB: db}
}

// CreateUser inserts an account with a plain password hash placeholder
func (f *Factory) CreateUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(t, f.DB.Create(user).Error)
	return user
}

// CreateProvider inserts a provider record for userID in status
func (f *Factory) CreateProvider(t *testing.T, userID uint, name, service, location, status string) *models.Provider {
	t.Helper()
	provider := &models.Provider{
		UserID:   userID,
		Name:     name,
		Service:  service,
		Location: location,
		Status:   status,
		Version:  1,
	}
	require.NoError(t, f.DB.Create(provider).Error)
	return provider
}
