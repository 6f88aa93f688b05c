package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds all configuration values from environment.
type Config struct {
	AppPort     string
	CORSOrigins string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Image cache settings
	ImageCache            bool          // Whether the local image cache is enabled
	ImageCachePath        string        // Directory holding cached image files
	ImageCacheDuration    time.Duration // TTL of a cache entry, 0 means never expire
	ImageCacheConcurrency int           // Maximum simultaneous upstream downloads (default: 3)

	// Local file settings for filesystem-imported objects
	LocalFilePrefix string // URL prefix identifying locally served images, bypasses the cache
	LocalFilePath   string // Directory backing LocalFilePrefix

	// Optional export sink; export push is disabled when the endpoint is unset
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSSL       bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	imageCache := false
	if cacheEnv := os.Getenv("IMAGE_CACHE"); cacheEnv != "" {
		val, err := strconv.ParseBool(cacheEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid IMAGE_CACHE value: %v", err)
		}
		imageCache = val
	}
	cacheDuration := time.Duration(0)
	if durationEnv := os.Getenv("IMAGE_CACHE_DURATION"); durationEnv != "" {
		seconds, err := strconv.Atoi(durationEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid IMAGE_CACHE_DURATION value: %v", err)
		}
		cacheDuration = time.Duration(seconds) * time.Second
	}
	concurrency := 3 // default value
	if concurrencyEnv := os.Getenv("IMAGE_CACHE_CONCURRENCY"); concurrencyEnv != "" {
		val, err := strconv.Atoi(concurrencyEnv)
		if err == nil && val > 0 {
			concurrency = val
		}
	}
	minioSSL := false
	if sslEnv := os.Getenv("MINIO_SSL"); sslEnv != "" {
		val, err := strconv.ParseBool(sslEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid MINIO_SSL value: %v", err)
		}
		minioSSL = val
	}
	cfg := &Config{
		AppPort:     os.Getenv("APP_PORT"),
		CORSOrigins: os.Getenv("CORS_ORIGINS"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      os.Getenv("DB_PORT"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),

		ImageCache:            imageCache,
		ImageCachePath:        os.Getenv("IMAGE_CACHE_PATH"),
		ImageCacheDuration:    cacheDuration,
		ImageCacheConcurrency: concurrency,

		LocalFilePrefix: os.Getenv("LOCAL_FILE_PREFIX"),
		LocalFilePath:   os.Getenv("LOCAL_FILE_PATH"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioSSL:       minioSSL,
	}
	// Basic validation for required fields
	if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("database configuration is incomplete")
	}
	if cfg.ImageCache && cfg.ImageCachePath == "" {
		return nil, fmt.Errorf("IMAGE_CACHE_PATH is required when the image cache is enabled")
	}
	if cfg.MinioEndpoint != "" {
		if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
			return nil, fmt.Errorf("minio configuration is incomplete")
		}
	}
	return cfg, nil
}

// ExportEnabled reports whether an export sink is configured.
func (c *Config) ExportEnabled() bool {
	return c.MinioEndpoint != ""
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
