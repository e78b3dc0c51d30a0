package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"servicehub/internal/adapters/cache"
	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/adapters/storage"
	"servicehub/internal/config"
	"servicehub/internal/pkg/metrics"
	"servicehub/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	msgs []any
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

type testEnv struct {
	db        *gorm.DB
	factory   *testutil.Factory
	uploadDir string
	photos    *storage.LocalStore
	cache     *cache.Memory
	publisher *recordingPublisher
	metrics   *metrics.Metrics

	userRepo     repositories.UserRepository
	tokenRepo    repositories.RefreshTokenRepository
	providerRepo repositories.ProviderRepository
	eventRepo    repositories.ModerationEventRepository

	auth        *AuthService
	accounts    *AccountService
	providers   *ProviderService
	moderation  *ModerationService
	feedback    *FeedbackService
	maintenance *MaintenanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	dir := t.TempDir()
	photos, err := storage.NewLocalStore(dir, "/uploads")
	require.NoError(t, err)

	env := &testEnv{
		db:           db,
		factory:      testutil.NewFactory(db),
		uploadDir:    dir,
		photos:       photos,
		cache:        cache.NewMemory(),
		publisher:    &recordingPublisher{},
		metrics:      metrics.New(prometheus.NewRegistry()),
		userRepo:     repositories.NewUserRepository(db),
		tokenRepo:    repositories.NewRefreshTokenRepository(db),
		providerRepo: repositories.NewProviderRepository(db),
		eventRepo:    repositories.NewModerationEventRepository(db),
	}
	env.build()
	t.Cleanup(func() { _ = env.cache.Close() })
	return env
}

// build wires the services over the env's current repositories
func (e *testEnv) build() {
	log := newNoopLogger()
	listings := NewListingCache(e.cache, time.Minute, log)

	e.auth = NewAuthService(e.userRepo, e.tokenRepo, config.JWTConfig{
		Secret:           "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessTokenMins:  15,
		RefreshTokenDays: 7,
	}, e.metrics, log)
	e.auth.hashCost = bcrypt.MinCost

	e.accounts = NewAccountService(e.userRepo, e.providerRepo, e.tokenRepo, e.photos, listings, log)
	e.providers = NewProviderService(e.providerRepo, e.userRepo, e.accounts, e.photos, listings, e.metrics, log)
	e.moderation = NewModerationService(e.providerRepo, e.eventRepo, e.photos, listings, e.publisher, e.metrics, log)
	e.feedback = NewFeedbackService(
		repositories.NewReviewRepository(e.db),
		repositories.NewComplaintRepository(e.db),
		e.providerRepo,
		e.metrics,
		log,
	)
	e.maintenance = NewMaintenanceService(e.tokenRepo, e.providerRepo, e.photos, config.MaintenanceConfig{
		TokenPurgeSpec: "0 3 * * *",
		PhotoSweepSpec: "30 3 * * *",
	}, log)
}

// withProviderRepo rebuilds the services over repo
func (e *testEnv) withProviderRepo(repo repositories.ProviderRepository) {
	e.providerRepo = repo
	e.build()
}

func (e *testEnv) createUserWithID(t *testing.T, id uint, username string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) assetExists(name string) bool {
	_, err := os.Stat(filepath.Join(e.uploadDir, name))
	return err == nil
}

func (e *testEnv) writeAsset(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.uploadDir, name), []byte("img"), 0o644))
}

func photoUpload(filename string) *PhotoUpload {
	return &PhotoUpload{
		Filename: filename,
		Size:     3,
		Content:  strings.NewReader("img"),
	}
}

// flakyProviderRepo injects failures in front of a real repository
type flakyProviderRepo struct {
	repositories.ProviderRepository

	mu              sync.Mutex
	createErr       error
	updateErr       error
	staleStatusLeft int
	deleteErr       error
}

func (r *flakyProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.ProviderRepository.Create(ctx, p)
}

func (r *flakyProviderRepo) Update(ctx context.Context, p *models.Provider) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.ProviderRepository.Update(ctx, p)
}

func (r *flakyProviderRepo) UpdateStatus(ctx context.Context, id, version uint, status string) error {
	r.mu.Lock()
	if r.staleStatusLeft != 0 {
		if r.staleStatusLeft > 0 {
			r.staleStatusLeft--
		}
		r.mu.Unlock()
		return repositories.ErrStaleVersion
	}
	r.mu.Unlock()
	return r.ProviderRepository.UpdateStatus(ctx, id, version, status)
}

func (r *flakyProviderRepo) Delete(ctx context.Context, id uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.ProviderRepository.Delete(ctx, id)
}

// withUserRepo rebuilds the services over repo
func (e *testEnv) withUserRepo(repo repositories.UserRepository) {
	e.userRepo = repo
	e.build()
}

// blindProviderRepo never sees an existing record, as when two registrations race past the check
type blindProviderRepo struct {
	repositories.ProviderRepository
}

func (r *blindProviderRepo) ExistsByUserID(context.Context, uint) (bool, error) {
	return false, nil
}

// blindUserRepo never sees a taken username or email
type blindUserRepo struct {
	repositories.UserRepository
}

func (r *blindUserRepo) ExistsByUsername(context.Context, string) (bool, error) {
	return false, nil
}

func (r *blindUserRepo) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}
