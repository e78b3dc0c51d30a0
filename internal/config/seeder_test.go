package config

import (
	"testing"

	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/pkg/password"
	"servicehub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_CreatesAdminOnce(t *testing.T) {
	db := testutil.NewDB(t)
	seeder := NewSeeder(db, AdminConfig{Username: "admin", Email: "admin@admin.com", Password: "admin123"})

	require.NoError(t, seeder.Run())
	require.NoError(t, seeder.Run())

	var admins []models.User
	require.NoError(t, db.Where("role = ?", "admin").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@admin.com", admins[0].Email)
	assert.True(t, password.Verify("admin123", admins[0].Password))
}

func TestSeeder_SkipsWhenUsernameTaken(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.NewFactory(db).CreateUser(t, "admin", "client")

	require.NoError(t, NewSeeder(db, AdminConfig{Username: "admin", Email: "admin@admin.com", Password: "pw"}).Run())

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error)
	assert.Zero(t, count)
}

func TestHealthCheck(t *testing.T) {
	assert.Error(t, HealthCheck(nil))
	assert.NoError(t, HealthCheck(testutil.NewDB(t)))
}
