package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"servicehub/internal/adapters/messaging"
	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/adapters/storage"
	"servicehub/internal/core/domain"
	"servicehub/internal/pkg/metrics"
	"servicehub/internal/pkg/pagination"
	"servicehub/internal/pkg/sl"

	"gorm.io/gorm"
)

// maxStatusAttempts bounds re-reads when another writer bumps the record version
const maxStatusAttempts = 3

// ModerationService drives the provider approval workflow and public listings
type ModerationService struct {
	providerRepo repositories.ProviderRepository
	eventRepo    repositories.ModerationEventRepository
	photos       storage.PhotoStore
	listings     *ListingCache
	publisher    messaging.Publisher
	metrics      *metrics.Metrics
	log          *slog.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(
	providerRepo repositories.ProviderRepository,
	eventRepo repositories.ModerationEventRepository,
	photos storage.PhotoStore,
	listings *ListingCache,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	log *slog.Logger,
) *ModerationService {
	if publisher == nil {
		publisher = messaging.Noop{}
	}
	return &ModerationService{
		providerRepo: providerRepo,
		eventRepo:    eventRepo,
		photos:       photos,
		listings:     listings,
		publisher:    publisher,
		metrics:      m,
		log:          log,
	}
}

// ListProvidersOutput represents a page of provider records
type ListProvidersOutput struct {
	Providers []*models.ProviderResponse `json:"providers"`
	Meta      *pagination.Meta           `json:"meta"`
}

// Approve sets a record to approved
func (s *ModerationService) Approve(ctx context.Context, providerID, adminID uint) (*models.ProviderResponse, error) {
	return s.SetStatus(ctx, providerID, adminID, string(domain.ProviderApproved))
}

// Reject sets a record to rejected
func (s *ModerationService) Reject(ctx context.Context, providerID, adminID uint) (*models.ProviderResponse, error) {
	return s.SetStatus(ctx, providerID, adminID, string(domain.ProviderRejected))
}

// SetStatus moves a record to status. The write is guarded by the record version and
// retried on a concurrent modification; the transition is re-checked on every attempt.
func (s *ModerationService) SetStatus(ctx context.Context, providerID, adminID uint, status string) (*models.ProviderResponse, error) {
	const op = "services.ModerationService.SetStatus"

	target, err := domain.ParseProviderStatus(status)
	if err != nil {
		return nil, err
	}

	var provider *models.Provider
	var from domain.ProviderStatus
	for attempt := 1; ; attempt++ {
		provider, err = s.providerRepo.GetByID(ctx, providerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrProviderNotFound
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		from = domain.ProviderStatus(provider.Status)
		if err := domain.CanTransition(from, target); err != nil {
			return nil, err
		}

		err = s.providerRepo.UpdateStatus(ctx, provider.ID, provider.Version, string(target))
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrStaleVersion) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.metrics.StaleRetry()
		if attempt == maxStatusAttempts {
			return nil, domain.ErrConcurrentUpdate
		}
	}

	provider.Status = string(target)
	provider.Version++

	event := &models.ModerationEvent{
		ProviderID: provider.ID,
		AdminID:    adminID,
		FromStatus: string(from),
		ToStatus:   string(target),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Error("failed to record moderation event", slog.Uint64("provider_id", uint64(provider.ID)), sl.Err(err))
	}

	s.listings.invalidate(ctx)
	s.metrics.ModerationDecision(string(target))

	msg := messaging.ProviderModerated{
		ProviderID: provider.ID,
		UserID:     provider.UserID,
		AdminID:    adminID,
		FromStatus: string(from),
		ToStatus:   string(target),
		At:         time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, messaging.RoutingProviderModerated, msg); err != nil {
		s.log.Warn("failed to publish moderation event", slog.Uint64("provider_id", uint64(provider.ID)), sl.Err(err))
	}

	s.log.Info("provider moderated",
		slog.Uint64("provider_id", uint64(provider.ID)),
		slog.Uint64("admin_id", uint64(adminID)),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
	)
	return provider.ToResponse(s.photos.URL), nil
}

// ListByStatus lists records, optionally only those in status
func (s *ModerationService) ListByStatus(ctx context.Context, status string, page, limit int) (*ListProvidersOutput, error) {
	var filter repositories.ProviderFilter
	if status != "" {
		parsed, err := domain.ParseProviderStatus(status)
		if err != nil {
			return nil, err
		}
		st := string(parsed)
		filter.Status = &st
	}

	params := pagination.NewParams(page, limit)
	providers, total, err := s.providerRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("services.ModerationService.ListByStatus: %w", err)
	}

	return &ListProvidersOutput{
		Providers: s.toResponses(providers),
		Meta:      pagination.GetMeta(params, total),
	}, nil
}

// Stats counts records per status
func (s *ModerationService) Stats(ctx context.Context) (*domain.ProviderStats, error) {
	key, cacheable := s.listings.key(ctx, "stats")
	if cacheable {
		var cached domain.ProviderStats
		if s.listings.load(ctx, key, &cached) {
			return &cached, nil
		}
	}

	counts, err := s.providerRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("services.ModerationService.Stats: %w", err)
	}

	stats := &domain.ProviderStats{
		Pending:  counts[string(domain.ProviderPending)],
		Approved: counts[string(domain.ProviderApproved)],
		Rejected: counts[string(domain.ProviderRejected)],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected

	if cacheable {
		s.listings.store(ctx, key, stats)
	}
	return stats, nil
}

// SearchPublic returns approved records whose name, service or location contains query,
// ignoring case. An empty query returns every approved record.
func (s *ModerationService) SearchPublic(ctx context.Context, query string) ([]*models.ProviderResponse, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	key, cacheable := s.listings.key(ctx, "search", query)
	if cacheable {
		var cached []*models.ProviderResponse
		if s.listings.load(ctx, key, &cached) {
			return cached, nil
		}
	}

	providers, err := s.providerRepo.SearchByStatus(ctx, string(domain.ProviderApproved), query)
	if err != nil {
		return nil, fmt.Errorf("services.ModerationService.SearchPublic: %w", err)
	}

	resp := s.toResponses(providers)
	if cacheable {
		s.listings.store(ctx, key, resp)
	}
	return resp, nil
}

// History returns the status changes of a record, newest first
func (s *ModerationService) History(ctx context.Context, providerID uint) ([]*models.ModerationEvent, error) {
	const op = "services.ModerationService.History"

	if _, err := s.providerRepo.GetByID(ctx, providerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProviderNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := s.eventRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func (s *ModerationService) toResponses(providers []*models.Provider) []*models.ProviderResponse {
	resp := make([]*models.ProviderResponse, len(providers))
	for i, p := range providers {
		resp[i] = p.ToResponse(s.photos.URL)
	}
	return resp
}
