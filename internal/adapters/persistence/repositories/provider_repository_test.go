package repositories

import (
	"context"
	"testing"

	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProviderRepository_UniquePerUser(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFactory(db)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	user := f.CreateUser(t, "ana", "provider")
	require.NoError(t, repo.Create(ctx, &models.Provider{UserID: user.ID, Name: "Ana", Status: "pending", Version: 1}))

	err := repo.Create(ctx, &models.Provider{UserID: user.ID, Name: "Ana again", Status: "pending", Version: 1})
	assert.Error(t, err)

	exists, err := repo.ExistsByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProviderRepository_UpdateIsVersionGuarded(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFactory(db)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	user := f.CreateUser(t, "ana", "provider")
	created := f.CreateProvider(t, user.ID, "Ana", "plumbing", "Lyon", "pending")

	first, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	first.Name = "Ana B."
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, uint(2), first.Version)

	second.Name = "Lost update"
	assert.ErrorIs(t, repo.Update(ctx, second), ErrStaleVersion)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana B.", stored.Name)
}

func TestProviderRepository_UpdateStatus(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFactory(db)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	user := f.CreateUser(t, "ana", "provider")
	p := f.CreateProvider(t, user.ID, "Ana", "plumbing", "Lyon", "pending")

	require.NoError(t, repo.UpdateStatus(ctx, p.ID, 1, "approved"))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, p.ID, 1, "rejected"), ErrStaleVersion)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, p.ID+100, 1, "rejected"), ErrStaleVersion)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
	assert.Equal(t, uint(2), stored.Version)
}

func TestProviderRepository_SearchByStatus(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFactory(db)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	f.CreateProvider(t, f.CreateUser(t, "ana", "").ID, "Ana", "Plumbing", "Lyon", "approved")
	f.CreateProvider(t, f.CreateUser(t, "bob", "").ID, "Bob", "Electrician", "Paris", "approved")
	f.CreateProvider(t, f.CreateUser(t, "cid", "").ID, "Cid", "plumbing", "Nice", "pending")
	f.CreateProvider(t, f.CreateUser(t, "dan", "").ID, "Dan", "Gardening", "lyon", "rejected")
	f.CreateProvider(t, f.CreateUser(t, "eve", "").ID, "Eve", "100% tiles", "St_Malo", "approved")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "service substring any case", query: "PLUMB", want: []string{"Ana"}},
		{name: "location", query: "lyon", want: []string{"Ana"}},
		{name: "name", query: "bo", want: []string{"Bob"}},
		{name: "empty returns all approved", query: "", want: []string{"Ana", "Bob", "Eve"}},
		{name: "no match", query: "roofing", want: nil},
		{name: "underscore is literal", query: "n_", want: nil},
		{name: "underscore substring", query: "t_m", want: []string{"Eve"}},
		{name: "percent is literal", query: "%", want: []string{"Eve"}},
		{name: "escape char is literal", query: "!", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchByStatus(ctx, "approved", tt.query)
			require.NoError(t, err)

			var names []string
			for _, p := range got {
				assert.Equal(t, "approved", p.Status)
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProviderRepository_ListAndCount(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFactory(db)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	f.CreateProvider(t, f.CreateUser(t, "a", "").ID, "A", "s", "l", "approved")
	f.CreateProvider(t, f.CreateUser(t, "b", "").ID, "B", "s", "l", "pending")
	f.CreateProvider(t, f.CreateUser(t, "c", "").ID, "C", "s", "l", "pending")
	f.CreateProvider(t, f.CreateUser(t, "d", "").ID, "D", "s", "l", "rejected")

	all, total, err := repo.List(ctx, ProviderFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, int64(4), total)

	status := "pending"
	pending, total, err := repo.List(ctx, ProviderFilter{Status: &status}, 0, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, int64(2), total)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"approved": 1, "pending": 2, "rejected": 1}, counts)
}

func TestProviderRepository_DeleteAndPhotos(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFactory(db)
	repo := NewProviderRepository(db)
	ctx := context.Background()

	withPhoto := f.CreateProvider(t, f.CreateUser(t, "a", "").ID, "A", "s", "l", "pending")
	require.NoError(t, db.Model(withPhoto).Update("photo", "user_1.jpg").Error)
	f.CreateProvider(t, f.CreateUser(t, "b", "").ID, "B", "s", "l", "pending")

	photos, err := repo.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_1.jpg"}, photos)

	require.NoError(t, repo.Delete(ctx, withPhoto.ID))
	assert.ErrorIs(t, repo.Delete(ctx, withPhoto.ID), gorm.ErrRecordNotFound)

	_, err = repo.GetByID(ctx, withPhoto.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
