package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicehub/internal/adapters/cache"
	"servicehub/internal/adapters/http/middleware"
	"servicehub/internal/adapters/http/routes"
	"servicehub/internal/adapters/messaging"
	"servicehub/internal/adapters/persistence/models"
	"servicehub/internal/adapters/persistence/repositories"
	"servicehub/internal/adapters/storage"
	"servicehub/internal/config"
	"servicehub/internal/core/services"
	"servicehub/internal/pkg/metrics"
	"servicehub/internal/pkg/sl"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	_ "servicehub/docs" // Swagger docs
)

// @title servicehub API
// @version 1.0
// @description Marketplace connecting service providers with clients: accounts, provider profiles, moderation, reviews and complaints.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg.Admin).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed admin: %v", err)
	}

	ctx := context.Background()

	photos, err := setupStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to set up photo storage: %v", err)
	}

	listingCache := setupCache(ctx, cfg)
	defer listingCache.Close()

	publisher := setupPublisher(cfg)
	defer publisher.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	maintenance := services.NewMaintenanceService(
		repositories.NewRefreshTokenRepository(db),
		repositories.NewProviderRepository(db),
		photos,
		cfg.Maintenance,
		logger,
	)
	if err := maintenance.Start(); err != nil {
		log.Fatalf("❌ Failed to start maintenance jobs: %v", err)
	}
	defer maintenance.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "servicehub API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    (cfg.Storage.MaxUploadMB + 1) << 20,
	})

	middleware.Setup(app, cfg)

	routes.Setup(app, routes.Dependencies{
		DB:        db,
		Config:    cfg,
		Photos:    photos,
		Cache:     listingCache,
		Publisher: publisher,
		Metrics:   m,
		Gatherer:  prometheus.DefaultGatherer,
		Logger:    logger,
	})

	go gracefulShutdown(app)

	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupStorage(ctx context.Context, cfg *config.Config) (storage.PhotoStore, error) {
	if cfg.Storage.Driver == "s3" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			PublicURL: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Photo storage: s3 bucket %s", cfg.Storage.S3Bucket)
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Photo storage: local dir %s", store.Dir())
	return store, nil
}

// setupCache falls back to an in-process cache without Redis and to no caching when Redis is unreachable
func setupCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.Redis.Addr == "" {
		log.Println("✅ Listing cache: in-memory")
		return cache.NewMemory()
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Warn("redis unavailable, listing cache disabled", sl.Err(err))
		return cache.Noop{}
	}
	log.Printf("✅ Listing cache: redis %s", cfg.Redis.Addr)
	return rc
}

func setupPublisher(cfg *config.Config) messaging.Publisher {
	if cfg.RabbitMQ.URL == "" {
		return messaging.Noop{}
	}

	conn, err := messaging.Connect(cfg.RabbitMQ.URL, 5, 2*time.Second)
	if err != nil {
		slog.Warn("rabbitmq unavailable, moderation events disabled", sl.Err(err))
		return messaging.Noop{}
	}

	pub, err := messaging.NewRabbitPublisher(conn, cfg.RabbitMQ.Exchange)
	if err != nil {
		_ = conn.Close()
		slog.Warn("rabbitmq exchange setup failed, moderation events disabled", sl.Err(err))
		return messaging.Noop{}
	}
	log.Printf("✅ Moderation events: rabbitmq exchange %s", cfg.RabbitMQ.Exchange)
	return pub
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
