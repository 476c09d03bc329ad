package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port       string
	Env        string // development, staging, production
	CORSOrigin string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Source feeds (play-by-play, participation, coaching staff)
	Feeds FeedsConfig

	// Scoring reference data
	Scoring ScoringConfig

	// Batch scheduling
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool

	// LockTTL bounds how long a batch job may hold the single-writer lock
	LockTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// AutoMigrate applies pending schema migrations on startup
	AutoMigrate bool
}

// FeedsConfig holds source feed locations
type FeedsConfig struct {
	// Dir is the local directory used when no remote source is selected
	Dir string

	// BaseURL is an HTTP(S) prefix serving the feed files
	BaseURL string

	// RequestsPerSecond throttles HTTP feed downloads
	RequestsPerSecond float64

	S3  S3Config
	GCS GCSConfig
}

// S3Config holds S3 (or S3-compatible) feed bucket configuration
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// GCSConfig holds Google Cloud Storage feed bucket configuration
type GCSConfig struct {
	Bucket string
	Prefix string
}

// ScoringConfig holds scorer reference data configuration
type ScoringConfig struct {
	// WeightsFile is a YAML or TOML role-pair weight table.
	// Empty means the built-in default table.
	WeightsFile string
}

// SchedulerConfig holds batch scheduling configuration
type SchedulerConfig struct {
	Enabled      bool
	PipelineCron string // with seconds field
	MaxRetries   int
	RetryDelay   time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:       getEnv("PORT", "8000"),
		Env:        getEnv("ENV", "development"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "cohesion"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			LockTTL:  getEnvAsDuration("REDIS_LOCK_TTL", "30m"),
		},

		// Feeds
		Feeds: FeedsConfig{
			Dir:               getEnv("FEEDS_DIR", "data"),
			BaseURL:           getEnv("FEEDS_BASE_URL", ""),
			RequestsPerSecond: getEnvAsFloat("FEEDS_RPS", 2),
			S3: S3Config{
				Bucket:    getEnv("FEEDS_S3_BUCKET", ""),
				Region:    getEnv("FEEDS_S3_REGION", ""),
				Endpoint:  getEnv("FEEDS_S3_ENDPOINT", ""),
				AccessKey: getEnv("FEEDS_S3_ACCESS_KEY", ""),
				SecretKey: getEnv("FEEDS_S3_SECRET_KEY", ""),
				Prefix:    getEnv("FEEDS_S3_PREFIX", ""),
			},
			GCS: GCSConfig{
				Bucket: getEnv("FEEDS_GCS_BUCKET", ""),
				Prefix: getEnv("FEEDS_GCS_PREFIX", ""),
			},
		},

		// Scoring
		Scoring: ScoringConfig{
			WeightsFile: getEnv("ROLE_WEIGHTS_FILE", ""),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			Enabled:      getEnvAsBool("SCHEDULER_ENABLED", true),
			PipelineCron: getEnv("SCHEDULER_PIPELINE_CRON", "0 0 6 * * *"),
			MaxRetries:   getEnvAsInt("SCHEDULER_MAX_RETRIES", 2),
			RetryDelay:   getEnvAsDuration("SCHEDULER_RETRY_DELAY", "1m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scheduler.Enabled && c.Scheduler.PipelineCron == "" {
		return fmt.Errorf("SCHEDULER_PIPELINE_CRON is required when the scheduler is enabled")
	}

	if c.Feeds.RequestsPerSecond <= 0 {
		return fmt.Errorf("FEEDS_RPS must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
