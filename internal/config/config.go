package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode        string `env:"APP_MODE" env-default:"dev"`
	Port           string `env:"PORT" env-default:"3000"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL" env-default:""`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" env-default:""`

	Database    DatabaseConfig
	JWT         JWTConfig
	Storage     StorageConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Admin       AdminConfig
	Maintenance MaintenanceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" env-default:"sqlite"`
	SQLitePath string `env:"DB_SQLITE_PATH" env-default:"main.db"`
	Host       string `env:"DB_HOST" env-default:"localhost"`
	Port       string `env:"DB_PORT" env-default:"3306"`
	User       string `env:"DB_USER" env-default:"root"`
	Password   string `env:"DB_PASS" env-default:""`
	DBName     string `env:"DB_NAME" env-default:"servicehub"`
	SSLMode    string `env:"DB_SSLMODE" env-default:"disable"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `env:"JWT_SECRET" env-default:"default_secret"`
	RefreshSecret    string `env:"JWT_REFRESH_SECRET" env-default:"default_refresh_secret"`
	AccessTokenMins  int    `env:"ACCESS_TOKEN_MINUTES" env-default:"15"`
	RefreshTokenDays int    `env:"REFRESH_TOKEN_DAYS" env-default:"7"`
}

// StorageConfig holds photo storage configuration
type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER" env-default:"local"`
	UploadDir   string `env:"UPLOAD_DIR" env-default:"uploads"`
	MaxUploadMB int    `env:"MAX_UPLOAD_MB" env-default:"5"`
	S3Bucket    string `env:"S3_BUCKET" env-default:""`
	S3Region    string `env:"S3_REGION" env-default:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT" env-default:""`
	S3AccessKey string `env:"S3_ACCESS_KEY" env-default:""`
	S3SecretKey string `env:"S3_SECRET_KEY" env-default:""`
	S3PublicURL string `env:"S3_PUBLIC_URL" env-default:""`
}

// RedisConfig holds cache configuration; an empty address disables caching
type RedisConfig struct {
	Addr       string `env:"REDIS_ADDR" env-default:""`
	Password   string `env:"REDIS_PASSWORD" env-default:""`
	DB         int    `env:"REDIS_DB" env-default:"0"`
	TTLSeconds int    `env:"REDIS_TTL_SECONDS" env-default:"60"`
}

// RabbitMQConfig holds messaging configuration; an empty URL disables publishing
type RabbitMQConfig struct {
	URL      string `env:"RABBITMQ_URL" env-default:""`
	Exchange string `env:"RABBITMQ_EXCHANGE" env-default:"servicehub.events"`
}

// AdminConfig holds the seeded admin account
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" env-default:"admin"`
	Email    string `env:"ADMIN_EMAIL" env-default:"admin@admin.com"`
	Password string `env:"ADMIN_PASSWORD" env-default:"admin123"`
}

// MaintenanceConfig holds cron specs for background jobs
type MaintenanceConfig struct {
	TokenPurgeSpec string `env:"CRON_TOKEN_PURGE" env-default:"0 3 * * *"`
	PhotoSweepSpec string `env:"CRON_PHOTO_SWEEP" env-default:"30 3 * * *"`
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read environment: %w", err)
	}

	// trim spaces for Windows compatibility
	cfg.AppMode = strings.TrimSpace(cfg.AppMode)
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s, DB: %s, STORAGE: %s]",
		cfg.AppMode, cfg.Database.Driver, cfg.Storage.Driver)
	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if c.AppMode != "dev" && c.AppMode != "prod" {
		return fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", c.AppMode)
	}

	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'sqlite', 'mysql' or 'postgres')", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER is 's3'")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER: '%s' (must be 'local' or 's3')", c.Storage.Driver)
	}

	if c.IsProd() && (c.JWT.Secret == "default_secret" || c.JWT.RefreshSecret == "default_refresh_secret") {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be set in prod")
	}
	return nil
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	if c.AllowedOrigins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.PublicBaseURL
	}
	return c.AllowedOrigins
}
