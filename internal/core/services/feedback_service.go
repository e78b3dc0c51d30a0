package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/core/domain"
	"servicehub/internal/pkg/metrics"

	"gorm.io/gorm"
)

// FeedbackService handles reviews and complaints
type FeedbackService struct {
	reviewRepo    repositories.ReviewRepository
	complaintRepo repositories.ComplaintRepository
	providerRepo  repositories.ProviderRepository
	metrics       *metrics.Metrics
	log           *slog.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	reviewRepo repositories.ReviewRepository,
	complaintRepo repositories.ComplaintRepository,
	providerRepo repositories.ProviderRepository,
	m *metrics.Metrics,
	log *slog.Logger,
) *FeedbackService {
	return &FeedbackService{
		reviewRepo:    reviewRepo,
		complaintRepo: complaintRepo,
		providerRepo:  providerRepo,
		metrics:       m,
		log:           log,
	}
}

// AddReview appends a review. username is stored as a snapshot.
func (s *FeedbackService) AddReview(ctx context.Context, userID uint, username string, rating int, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if userID == 0 || text == "" {
		return nil, fmt.Errorf("%w: review text is required", domain.ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	review := &models.Review{
		UserID:   userID,
		Username: username,
		Rating:   rating,
		Text:     text,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("services.FeedbackService.AddReview: %w", err)
	}

	s.metrics.ReviewPosted()
	return review, nil
}

// ListLatestPerReviewer returns the newest review of each reviewer, newest first
func (s *FeedbackService) ListLatestPerReviewer(ctx context.Context) ([]*models.Review, error) {
	reviews, err := s.reviewRepo.ListLatestPerUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("services.FeedbackService.ListLatestPerReviewer: %w", err)
	}
	return reviews, nil
}

// AddComplaint files a pending complaint against a provider
func (s *FeedbackService) AddComplaint(ctx context.Context, userID, providerID uint, text string) (*models.Complaint, error) {
	const op = "services.FeedbackService.AddComplaint"

	text = strings.TrimSpace(text)
	if userID == 0 || providerID == 0 || text == "" {
		return nil, fmt.Errorf("%w: user, provider and complaint are required", domain.ErrInvalidInput)
	}

	if _, err := s.providerRepo.GetByID(ctx, providerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	complaint := &models.Complaint{
		UserID:     userID,
		ProviderID: providerID,
		Text:       text,
		Status:     string(domain.ComplaintPending),
	}
	if err := s.complaintRepo.Create(ctx, complaint); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.ComplaintFiled()
	s.log.Info("complaint filed",
		slog.Uint64("complaint_id", uint64(complaint.ID)),
		slog.Uint64("provider_id", uint64(providerID)),
	)
	return complaint, nil
}

// ResolveComplaint marks a complaint resolved
func (s *FeedbackService) ResolveComplaint(ctx context.Context, complaintID uint) error {
	if err := s.complaintRepo.UpdateStatus(ctx, complaintID, string(domain.ComplaintResolved)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrComplaintNotFound
		}
		return fmt.Errorf("services.FeedbackService.ResolveComplaint: %w", err)
	}
	return nil
}

// ListComplaints returns complaints with submitter and provider names, newest first
func (s *FeedbackService) ListComplaints(ctx context.Context) ([]*models.ComplaintView, error) {
	complaints, err := s.complaintRepo.ListWithNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("services.FeedbackService.ListComplaints: %w", err)
	}
	return complaints, nil
}
