package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/adapters/storage"
	"servicehub/internal/config"
	"servicehub/internal/pkg/sl"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// MaintenanceService runs scheduled cleanup jobs
type MaintenanceService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	providerRepo     repositories.ProviderRepository
	photos           storage.PhotoStore
	cfg              config.MaintenanceConfig
	log              *slog.Logger
	cron             *cron.Cron

	mu sync.Mutex
	// orphans seen by the previous sweep; an asset is removed only when orphaned twice in a row
	candidates map[string]struct{}
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	providerRepo repositories.ProviderRepository,
	photos storage.PhotoStore,
	cfg config.MaintenanceConfig,
	log *slog.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		refreshTokenRepo: refreshTokenRepo,
		providerRepo:     providerRepo,
		photos:           photos,
		cfg:              cfg,
		log:              log,
		candidates:       make(map[string]struct{}),
	}
}

// Start schedules the jobs
func (s *MaintenanceService) Start() error {
	c := cron.New()

	if _, err := c.AddFunc(s.cfg.TokenPurgeSpec, s.runJob("purge_tokens", func(ctx context.Context) error {
		_, err := s.PurgeExpiredTokens(ctx)
		return err
	})); err != nil {
		return fmt.Errorf("invalid token purge schedule %q: %w", s.cfg.TokenPurgeSpec, err)
	}

	if _, err := c.AddFunc(s.cfg.PhotoSweepSpec, s.runJob("sweep_photos", func(ctx context.Context) error {
		_, err := s.SweepOrphanPhotos(ctx)
		return err
	})); err != nil {
		return fmt.Errorf("invalid photo sweep schedule %q: %w", s.cfg.PhotoSweepSpec, err)
	}

	c.Start()
	s.cron = c
	s.log.Info("maintenance jobs scheduled",
		slog.String("purge_tokens", s.cfg.TokenPurgeSpec),
		slog.String("sweep_photos", s.cfg.PhotoSweepSpec),
	)
	return nil
}

// Stop waits for running jobs to finish
func (s *MaintenanceService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *MaintenanceService) runJob(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if err := job(ctx); err != nil {
			s.log.Error("maintenance job failed", slog.String("job", name), sl.Err(err))
		}
	}
}

// PurgeExpiredTokens deletes refresh tokens past their expiry
func (s *MaintenanceService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("services.MaintenanceService.PurgeExpiredTokens: %w", err)
	}
	s.log.Info("expired refresh tokens purged", slog.Int64("count", n))
	return n, nil
}

// SweepOrphanPhotos removes photo assets no provider record references.
// An asset is only removed once it was unreferenced on two consecutive sweeps,
// so uploads whose record is still being written survive.
func (s *MaintenanceService) SweepOrphanPhotos(ctx context.Context) (int, error) {
	const op = "services.MaintenanceService.SweepOrphanPhotos"

	assets, err := s.photos.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	referenced, err := s.providerRepo.ListPhotos(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	inUse := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		inUse[name] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]struct{})
	removed := 0
	for _, name := range assets {
		if !strings.HasPrefix(name, "user_") {
			continue
		}
		if _, ok := inUse[name]; ok {
			continue
		}
		if _, seen := s.candidates[name]; !seen {
			next[name] = struct{}{}
			continue
		}
		if err := s.photos.Delete(ctx, name); err != nil {
			s.log.Error("failed to remove orphan photo", slog.String("photo", name), sl.Err(err))
			next[name] = struct{}{}
			continue
		}
		removed++
	}
	s.candidates = next

	if removed > 0 {
		s.log.Info("orphan photos removed", slog.Int("count", removed))
	}
	return removed, nil
}
