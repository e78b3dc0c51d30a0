package services

import (
	"context"
	"testing"

	"servicehub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackService_AddReview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ana := env.factory.CreateUser(t, "ana", "client")

	tests := []struct {
		name    string
		rating  int
		text    string
		wantErr error
	}{
		{name: "lowest", rating: 1, text: "meh"},
		{name: "highest", rating: 5, text: "great"},
		{name: "zero", rating: 0, text: "x", wantErr: domain.ErrInvalidRating},
		{name: "six", rating: 6, text: "x", wantErr: domain.ErrInvalidRating},
		{name: "blank text", rating: 3, text: "   ", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := env.feedback.AddReview(ctx, ana.ID, "ana", tt.rating, tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, review.ID)
			assert.Equal(t, tt.rating, review.Rating)
		})
	}
}

func TestFeedbackService_LatestPerReviewer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ana := env.factory.CreateUser(t, "ana", "client")
	bob := env.factory.CreateUser(t, "bob", "client")

	steps := []struct {
		userID   uint
		username string
		text     string
	}{
		{ana.ID, "ana", "first"},
		{bob.ID, "bob", "hello"},
		{ana.ID, "ana", "second"},
	}
	for _, s := range steps {
		_, err := env.feedback.AddReview(ctx, s.userID, s.username, 4, s.text)
		require.NoError(t, err)
	}

	reviews, err := env.feedback.ListLatestPerReviewer(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "second", reviews[0].Text)
	assert.Equal(t, "hello", reviews[1].Text)
}

func TestFeedbackService_Complaints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bob := env.factory.CreateUser(t, "bob", "client")
	ana := env.factory.CreateUser(t, "ana", "provider")
	p := env.factory.CreateProvider(t, ana.ID, "Ana", "plumbing", "Lyon", "approved")

	tests := []struct {
		name       string
		userID     uint
		providerID uint
		text       string
		wantErr    error
	}{
		{name: "missing user", providerID: p.ID, text: "late", wantErr: domain.ErrInvalidInput},
		{name: "missing provider", userID: bob.ID, text: "late", wantErr: domain.ErrInvalidInput},
		{name: "missing text", userID: bob.ID, providerID: p.ID, wantErr: domain.ErrInvalidInput},
		{name: "unknown provider", userID: bob.ID, providerID: 999, text: "late", wantErr: domain.ErrProviderNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.feedback.AddComplaint(ctx, tt.userID, tt.providerID, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	complaint, err := env.feedback.AddComplaint(ctx, bob.ID, p.ID, "came two hours late")
	require.NoError(t, err)
	assert.Equal(t, "pending", complaint.Status)

	require.NoError(t, env.feedback.ResolveComplaint(ctx, complaint.ID))
	assert.ErrorIs(t, env.feedback.ResolveComplaint(ctx, 999), domain.ErrComplaintNotFound)

	views, err := env.feedback.ListComplaints(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "bob", views[0].Username)
	assert.Equal(t, "Ana", views[0].ProviderName)
	assert.Equal(t, "resolved", views[0].Status)
}
