package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"servicehub/internal/adapters/messaging"
	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(providers []*models.ProviderResponse) []string {
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = p.Name
	}
	return out
}

func TestModeration_ApproveMakesProviderSearchable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUserWithID(t, 7, "ana")
	admin := env.factory.CreateUser(t, "admin", "admin")

	registered, err := env.providers.Register(ctx, 7, domain.ProviderFields{Name: "Ana", Service: "plumbing", Location: "Lyon"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pending", registered.Status)

	found, err := env.moderation.SearchPublic(ctx, "plumb")
	require.NoError(t, err)
	assert.NotContains(t, names(found), "Ana")

	approved, err := env.moderation.Approve(ctx, registered.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	found, err = env.moderation.SearchPublic(ctx, "plumb")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, names(found))

	require.Equal(t, 1, env.publisher.count())
	assert.Equal(t, messaging.RoutingProviderModerated, env.publisher.keys[0])
	event := env.publisher.msgs[0].(messaging.ProviderModerated)
	assert.Equal(t, uint(7), event.UserID)
	assert.Equal(t, "pending", event.FromStatus)
	assert.Equal(t, "approved", event.ToStatus)

	history, err := env.moderation.History(ctx, registered.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, admin.ID, history[0].AdminID)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ModerationDecisions.WithLabelValues("approved")))
}

func TestModeration_SearchNeverReturnsUnapproved(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.factory.CreateUser(t, "admin", "admin")

	statuses := []string{"pending", "approved", "rejected", "approved"}
	for i, status := range statuses {
		u := env.factory.CreateUser(t, "user"+string(rune('a'+i)), "provider")
		env.factory.CreateProvider(t, u.ID, "Pro "+status, "Plumbing", "Lyon", status)
	}

	for _, query := range []string{"", "plumb", "LYON", "pro"} {
		found, err := env.moderation.SearchPublic(ctx, query)
		require.NoError(t, err)
		assert.Len(t, found, 2, query)
		for _, p := range found {
			assert.Equal(t, "approved", p.Status)
		}
	}

	// re-moderation drops the record from the cached listing
	found, err := env.moderation.SearchPublic(ctx, "plumb")
	require.NoError(t, err)
	_, err = env.moderation.Reject(ctx, found[0].ID, admin.ID)
	require.NoError(t, err)

	found, err = env.moderation.SearchPublic(ctx, "plumb")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestModeration_SetStatusErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.factory.CreateUser(t, "ana", "provider")
	p := env.factory.CreateProvider(t, u.ID, "Ana", "plumbing", "Lyon", "approved")

	tests := []struct {
		name       string
		providerID uint
		status     string
		wantErr    error
	}{
		{name: "back to pending", providerID: p.ID, status: "pending", wantErr: domain.ErrInvalidTransition},
		{name: "unknown status", providerID: p.ID, status: "archived", wantErr: domain.ErrInvalidStatus},
		{name: "missing record", providerID: 999, status: "approved", wantErr: domain.ErrProviderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.moderation.SetStatus(ctx, tt.providerID, 1, tt.status)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := env.providerRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", stored.Status)
	assert.Zero(t, env.publisher.count())
}

func TestModeration_ReModeration(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.factory.CreateUser(t, "ana", "provider")
	p := env.factory.CreateProvider(t, u.ID, "Ana", "plumbing", "Lyon", "pending")

	for _, status := range []string{"rejected", "approved", "approved", "rejected"} {
		resp, err := env.moderation.SetStatus(ctx, p.ID, 1, status)
		require.NoError(t, err)
		assert.Equal(t, status, resp.Status)
	}

	stored, err := env.providerRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), stored.Version)

	history, err := env.moderation.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "approved", history[0].FromStatus, "newest first")
	assert.Equal(t, "rejected", history[0].ToStatus)
}

func TestModeration_RetriesStaleWrites(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds within budget", func(t *testing.T) {
		env := newTestEnv(t)
		env.withProviderRepo(&flakyProviderRepo{ProviderRepository: env.providerRepo, staleStatusLeft: maxStatusAttempts - 1})
		u := env.factory.CreateUser(t, "ana", "provider")
		p := env.factory.CreateProvider(t, u.ID, "Ana", "plumbing", "Lyon", "pending")

		resp, err := env.moderation.Approve(ctx, p.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		assert.Equal(t, float64(maxStatusAttempts-1), testutil.ToFloat64(env.metrics.StaleRetries))
	})

	t.Run("gives up", func(t *testing.T) {
		env := newTestEnv(t)
		env.withProviderRepo(&flakyProviderRepo{ProviderRepository: env.providerRepo, staleStatusLeft: -1})
		u := env.factory.CreateUser(t, "ana", "provider")
		p := env.factory.CreateProvider(t, u.ID, "Ana", "plumbing", "Lyon", "pending")

		_, err := env.moderation.Approve(ctx, p.ID, 1)
		assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
		assert.Zero(t, env.publisher.count())
	})
}

func TestModeration_ConcurrentDecisions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.factory.CreateUser(t, "ana", "provider")
	p := env.factory.CreateProvider(t, u.ID, "Ana", "plumbing", "Lyon", "pending")

	const workers = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := "approved"
			if i%2 == 1 {
				status = "rejected"
			}
			_, err := env.moderation.SetStatus(ctx, p.ID, 1, status)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
		}(i)
	}
	wg.Wait()

	stored, err := env.providerRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1+succeeded), stored.Version, "every successful write bumps the version exactly once")

	history, err := env.moderation.History(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, succeeded)
	assert.GreaterOrEqual(t, succeeded, 1)
}

func TestModeration_PublishFailureDoesNotFailDecision(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker down")
	u := env.factory.CreateUser(t, "ana", "provider")
	p := env.factory.CreateProvider(t, u.ID, "Ana", "plumbing", "Lyon", "pending")

	resp, err := env.moderation.Approve(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
}

func TestModeration_Stats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i, status := range []string{"pending", "pending", "approved", "rejected", "approved", "approved"} {
		u := env.factory.CreateUser(t, "user"+string(rune('a'+i)), "provider")
		env.factory.CreateProvider(t, u.ID, "Pro", "cleaning", "Nice", status)
	}

	stats, err := env.moderation.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStats{Total: 6, Pending: 2, Approved: 3, Rejected: 1}, *stats)
	assert.Equal(t, stats.Total, stats.Pending+stats.Approved+stats.Rejected)

	// a registration invalidates the cached stats
	u := env.factory.CreateUser(t, "late", "provider")
	_, err = env.providers.Register(ctx, u.ID, domain.ProviderFields{Name: "Late", Service: "cleaning"}, nil)
	require.NoError(t, err)

	stats, err = env.moderation.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Total)
	assert.Equal(t, int64(3), stats.Pending)
}

func TestModeration_ListByStatus(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i, status := range []string{"pending", "approved", "pending"} {
		u := env.factory.CreateUser(t, "user"+string(rune('a'+i)), "provider")
		env.factory.CreateProvider(t, u.ID, "Pro", "cleaning", "Nice", status)
	}

	all, err := env.moderation.ListByStatus(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, all.Providers, 3)

	pending, err := env.moderation.ListByStatus(ctx, "pending", 1, 1)
	require.NoError(t, err)
	assert.Len(t, pending.Providers, 1)
	assert.Equal(t, int64(2), pending.Meta.Total)

	_, err = env.moderation.ListByStatus(ctx, "archived", 1, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
