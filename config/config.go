package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ObjectStoreS3     = "s3"
	ObjectStoreMemory = "memory"
)

type Config struct {
	Port        string
	Environment string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret        string
	JWTIssuer        string
	EncryptionKey    string
	SuperAdminEmails []string

	ObjectStore     string
	S3Bucket        string
	AWSRegion       string
	AWSEndpointURL  string
	MemoryStoreURL  string
	SignedURLTTL    time.Duration
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", "oneclick.db"),

		JWTSecret:        getEnv("JWT_SECRET", "oneclick-dev-secret-change-in-production"),
		JWTIssuer:        getEnv("JWT_ISSUER", "oneclick-auth"),
		EncryptionKey:    getEnv("ENCRYPTION_KEY", "OneClickKYC2025FieldKey123456789"),
		SuperAdminEmails: getEnvList("SUPER_ADMIN_EMAILS", nil),

		ObjectStore:     strings.ToLower(getEnv("OBJECT_STORE", ObjectStoreMemory)),
		S3Bucket:        getEnv("S3_BUCKET", "kyc-documents"),
		AWSRegion:       getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL:  getEnv("AWS_ENDPOINT_URL", ""),
		MemoryStoreURL:  getEnv("MEMORY_STORE_URL", "http://localhost:8080/files"),
		SignedURLTTL:    time.Duration(getEnvInt("SIGNED_URL_TTL_SECONDS", 3600)) * time.Second,
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 50),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ValidateConfig rejects settings the service cannot start with and logs
// the ones that are only unsafe.
func ValidateConfig(cfg *Config, logger *zap.Logger) error {
	if len(cfg.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 characters, got %d", len(cfg.EncryptionKey))
	}
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", cfg.DatabaseDriver)
	}
	switch cfg.ObjectStore {
	case ObjectStoreS3:
		if cfg.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when OBJECT_STORE=s3")
		}
	case ObjectStoreMemory:
		if cfg.IsProduction() {
			return fmt.Errorf("OBJECT_STORE=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("OBJECT_STORE must be s3 or memory, got %q", cfg.ObjectStore)
	}
	if cfg.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL_SECONDS must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if len(cfg.JWTSecret) < 32 {
		logger.Warn("JWT_SECRET should be at least 32 characters")
	}
	if cfg.IsProduction() && len(cfg.SuperAdminEmails) == 0 {
		logger.Warn("SUPER_ADMIN_EMAILS is empty; only app_role claims grant admin access")
	}
	return nil
}
