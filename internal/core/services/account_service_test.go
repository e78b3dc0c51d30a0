package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_SetRole(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.factory.CreateUser(t, "ana", "")

	tests := []struct {
		name    string
		userID  uint
		role    string
		want    *string
		wantErr error
	}{
		{name: "client", userID: user.ID, role: "client", want: strPtr("client")},
		{name: "admin", userID: user.ID, role: "admin", want: strPtr("admin")},
		{name: "same role twice", userID: user.ID, role: "admin", want: strPtr("admin")},
		{name: "unset", userID: user.ID, role: "", want: nil},
		{name: "unknown role", userID: user.ID, role: "owner", wantErr: domain.ErrInvalidRole},
		{name: "missing account", userID: 999, role: "client", wantErr: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.accounts.SetRole(ctx, tt.userID, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Role)
		})
	}
}

func TestAccountService_DeleteAccountCascade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ana := env.factory.CreateUser(t, "ana", "provider")
	bob := env.factory.CreateUser(t, "bob", "client")

	provider, err := env.providers.Register(ctx, ana.ID, domain.ProviderFields{Name: "Ana", Service: "plumbing", Location: "Lyon"}, photoUpload("me.png"))
	require.NoError(t, err)
	photo := fmt.Sprintf("user_%d.png", ana.ID)
	require.True(t, env.assetExists(photo))

	_, err = env.feedback.AddReview(ctx, ana.ID, "ana", 5, "great marketplace")
	require.NoError(t, err)
	_, err = env.feedback.AddComplaint(ctx, bob.ID, provider.ID, "no show")
	require.NoError(t, err)

	require.NoError(t, env.accounts.DeleteAccount(ctx, ana.ID))

	_, err = env.userRepo.GetByID(ctx, ana.ID)
	assert.Error(t, err)
	_, err = env.providers.GetByUserID(ctx, ana.ID)
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
	assert.False(t, env.assetExists(photo))

	reviews, err := env.feedback.ListLatestPerReviewer(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "ana", reviews[0].Username, "review keeps its snapshot")

	complaints, err := env.feedback.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, "bob", complaints[0].Username)
	assert.Empty(t, complaints[0].ProviderName, "orphaned provider renders an empty name")

	assert.ErrorIs(t, env.accounts.DeleteAccount(ctx, ana.ID), domain.ErrUserNotFound)
}

func TestAccountService_DeleteAccountKeepsAccountWhenProviderDeleteFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	repo := &flakyProviderRepo{ProviderRepository: env.providerRepo, deleteErr: errors.New("disk full")}
	env.withProviderRepo(repo)

	ana := env.factory.CreateUser(t, "ana", "provider")
	env.factory.CreateProvider(t, ana.ID, "Ana", "plumbing", "Lyon", "approved")

	assert.Error(t, env.accounts.DeleteAccount(ctx, ana.ID))

	_, err := env.userRepo.GetByID(ctx, ana.ID)
	assert.NoError(t, err, "account survives so the deletion can be retried")
}

func TestAccountService_DeleteAccountWithoutProvider(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.factory.CreateUser(t, "bob", "client")

	require.NoError(t, env.accounts.DeleteAccount(ctx, bob.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAccountService_RemoveAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.factory.CreateUser(t, "admin", "admin")
	bob := env.factory.CreateUser(t, "bob", "client")

	assert.ErrorIs(t, env.accounts.RemoveAccount(ctx, admin.ID, admin.ID), domain.ErrCannotDeleteSelf)
	require.NoError(t, env.accounts.RemoveAccount(ctx, bob.ID, admin.ID))
	assert.ErrorIs(t, env.accounts.RemoveAccount(ctx, bob.ID, admin.ID), domain.ErrUserNotFound)
}

func TestAccountService_DeleteOwnAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.factory.CreateUser(t, "admin", "admin")
	bob := env.factory.CreateUser(t, "bob", "client")

	assert.ErrorIs(t, env.accounts.DeleteOwnAccount(ctx, admin.ID), domain.ErrCannotDeleteSelf)
	require.NoError(t, env.accounts.DeleteOwnAccount(ctx, bob.ID))
	assert.ErrorIs(t, env.accounts.DeleteOwnAccount(ctx, bob.ID), domain.ErrUserNotFound)

	role, err := env.accounts.CurrentRole(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestAccountService_ListAccounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for _, name := range []string{"ana", "bob", "carl"} {
		env.factory.CreateUser(t, name, "client")
	}

	page, err := env.accounts.ListAccounts(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "ana", page.Users[0].Username)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.True(t, page.Meta.HasNext)

	page, err = env.accounts.ListAccounts(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "carl", page.Users[0].Username)
}

func strPtr(s string) *string {
	return &s
}
