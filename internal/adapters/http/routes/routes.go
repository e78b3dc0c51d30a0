package routes

import (
	"log/slog"
	"time"

	"servicehub/internal/adapters/cache"
	"servicehub/internal/adapters/http/handlers"
	"servicehub/internal/adapters/http/middleware"
	"servicehub/internal/adapters/messaging"
	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/adapters/storage"
	"servicehub/internal/config"
	"servicehub/internal/core/services"
	"servicehub/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies are the adapters the routes are built on
type Dependencies struct {
	DB        *gorm.DB
	Config    *config.Config
	Photos    storage.PhotoStore
	Cache     cache.Cache
	Publisher messaging.Publisher
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps Dependencies) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.Noop{}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(deps.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(deps.DB)
	providerRepo := repositories.NewProviderRepository(deps.DB)
	eventRepo := repositories.NewModerationEventRepository(deps.DB)
	reviewRepo := repositories.NewReviewRepository(deps.DB)
	complaintRepo := repositories.NewComplaintRepository(deps.DB)

	listings := services.NewListingCache(deps.Cache, time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT, deps.Metrics, log)
	accountService := services.NewAccountService(userRepo, providerRepo, refreshTokenRepo, deps.Photos, listings, log)
	providerService := services.NewProviderService(providerRepo, userRepo, accountService, deps.Photos, listings, deps.Metrics, log)
	moderationService := services.NewModerationService(providerRepo, eventRepo, deps.Photos, listings, deps.Publisher, deps.Metrics, log)
	feedbackService := services.NewFeedbackService(reviewRepo, complaintRepo, providerRepo, deps.Metrics, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(accountService)
	providerHandler := handlers.NewProviderHandler(providerService, moderationService, cfg.Storage.MaxUploadMB)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded photos, local driver only
	if local, ok := deps.Photos.(*storage.LocalStore); ok {
		app.Use("/uploads", middleware.CacheControl(5*time.Minute))
		app.Static("/uploads", local.Dir())
	}

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)

	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth", middleware.NoCacheHeaders()), authHandler, auth)
	setupProviderRoutes(apiV1.Group("/providers"), providerHandler, auth)
	setupFeedbackRoutes(apiV1, feedbackHandler, auth)
	apiV1.Delete("/account", auth, userHandler.DeleteMe)

	// Admin routes
	admin := apiV1.Group("/admin", middleware.NoCacheHeaders(), auth, middleware.StoredRole(accountService), middleware.AdminOnly())
	setupAdminRoutes(admin, userHandler, providerHandler, moderationHandler, feedbackHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler) {
	// Public routes
	router.Post("/signup", middleware.AuthRateLimiter(), handler.Signup)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
}

// setupProviderRoutes configures provider profile routes
func setupProviderRoutes(router fiber.Router, handler *handlers.ProviderHandler, auth fiber.Handler) {
	router.Get("/", handler.Search)
	router.Get("/user/:userId", handler.GetByUser)

	router.Post("/", auth, handler.Register)
	router.Put("/me", auth, handler.UpdateMe)
}

// setupFeedbackRoutes configures review and complaint routes
func setupFeedbackRoutes(router fiber.Router, handler *handlers.FeedbackHandler, auth fiber.Handler) {
	router.Get("/reviews", handler.ListReviews)
	router.Post("/reviews", auth, handler.AddReview)
	router.Post("/complaints", auth, handler.AddComplaint)
}

// setupAdminRoutes configures admin-only routes
func setupAdminRoutes(
	router fiber.Router,
	userHandler *handlers.UserHandler,
	providerHandler *handlers.ProviderHandler,
	moderationHandler *handlers.ModerationHandler,
	feedbackHandler *handlers.FeedbackHandler,
) {
	users := router.Group("/users")
	users.Get("/", userHandler.ListUsers)
	users.Put("/:id/role", userHandler.SetRole)
	users.Delete("/:id", userHandler.DeleteUser)

	providers := router.Group("/providers")
	providers.Get("/", moderationHandler.List)
	providers.Get("/stats", moderationHandler.Stats)
	providers.Post("/:id/approve", moderationHandler.Approve)
	providers.Post("/:id/reject", moderationHandler.Reject)
	providers.Put("/:id/status", moderationHandler.SetStatus)
	providers.Get("/:id/history", moderationHandler.History)
	providers.Put("/:id", providerHandler.AdminEdit)
	providers.Delete("/:id", providerHandler.Delete)

	complaints := router.Group("/complaints")
	complaints.Get("/", feedbackHandler.ListComplaints)
	complaints.Post("/:id/resolve", feedbackHandler.ResolveComplaint)
}
