package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	Debug      bool

	// Storage
	StorageDriver  string // memory, sqlite, postgres, mysql or redis
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	RedisURL       string

	// Study
	CatalogPath       string
	SelectionDebounce time.Duration
	TransitionTimeout time.Duration
	SessionDuration   time.Duration
	JWTSecret         string

	// Export
	ExportDir      string
	ExportS3Bucket string
	ExportS3Prefix string
	AWSRegion      string
	SESFromEmail   string
	SESFromName    string
	ResearcherMail string

	// Researcher access
	ResearcherUser         string
	ResearcherPasswordHash string

	RateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort: getEnv("PORT", "8080"),
		Debug:      getEnvBool("DEBUG", false),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", "sqlite")),
		DatabasePath:   getEnv("DB_PATH", "./rrstudy.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),

		CatalogPath:       getEnv("CATALOG_PATH", ""),
		SelectionDebounce: getEnvDuration("SELECTION_DEBOUNCE", 100*time.Millisecond),
		TransitionTimeout: getEnvDuration("TRANSITION_TIMEOUT", 2*time.Second),
		SessionDuration:   getEnvDuration("SESSION_DURATION", 24*time.Hour),
		JWTSecret:         getEnv("JWT_SECRET", ""),

		ExportDir:      getEnv("EXPORT_DIR", "./exports"),
		ExportS3Bucket: getEnv("EXPORT_S3_BUCKET", ""),
		ExportS3Prefix: getEnv("EXPORT_S3_PREFIX", "exports/"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:   getEnv("SES_FROM_EMAIL", ""),
		SESFromName:    getEnv("SES_FROM_NAME", "Relational Reasoning Study"),
		ResearcherMail: getEnv("RESEARCHER_EMAIL", ""),

		ResearcherUser:         getEnv("RESEARCHER_USER", "researcher"),
		ResearcherPasswordHash: getEnv("RESEARCHER_PASSWORD_HASH", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
	}
}

// UsesSQL reports whether the storage driver is one of the SQL dialects
func (c *Config) UsesSQL() bool {
	switch c.StorageDriver {
	case "sqlite", "sqlite3", "postgres", "postgresql", "mysql":
		return true
	}
	return false
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}
