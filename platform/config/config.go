// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int32
}

// MigrationConfig controls startup migrations.
type MigrationConfig interface {
	GetMigrateOnStart() bool
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerSecond() float64
	GetRateLimitBurst() int
}

// SchedulerConfig provides Redis and asynq settings for background jobs.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetPushMaxRetry() int
}

// PushConfig provides Firebase Cloud Messaging settings.
type PushConfig interface {
	GetFirebaseProjectID() string
	GetFirebaseCredentialsFile() string
	GetFirebaseCredentialsJSON() string
	GetAndroidChannelID() string
	IsPushEnabled() bool
}

// CommissionConfig provides commission calculation settings.
type CommissionConfig interface {
	GetDefaultCommissionPercentage() float64
}

// NotificationConfig provides settings for the in-process notification executor.
type NotificationConfig interface {
	GetNotificationWorkers() int
	GetNotificationQueueSize() int
	GetNotificationTimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	DatabaseMaxConns      int32
	MigrateOnStart        bool
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	PushMaxRetry          int
	FirebaseProjectID     string
	FirebaseCredsFile     string
	FirebaseCredsJSON     string
	AndroidChannelID      string
	DefaultCommissionPct  float64
	NotificationWorkers   int
	NotificationQueueSize int
	NotificationTimeout   time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetDatabaseMaxConns() int32 { return c.DatabaseMaxConns }
func (c *Config) GetMigrateOnStart() bool    { return c.MigrateOnStart }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string            { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool          { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string       { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool        { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerSecond() float64 { return c.RateLimitPerSecond }
func (c *Config) GetRateLimitBurst() int         { return c.RateLimitBurst }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetPushMaxRetry() int      { return c.PushMaxRetry }

// PushConfig implementation
func (c *Config) GetFirebaseProjectID() string       { return c.FirebaseProjectID }
func (c *Config) GetFirebaseCredentialsFile() string { return c.FirebaseCredsFile }
func (c *Config) GetFirebaseCredentialsJSON() string { return c.FirebaseCredsJSON }
func (c *Config) GetAndroidChannelID() string        { return c.AndroidChannelID }
func (c *Config) IsPushEnabled() bool {
	return c.FirebaseProjectID != "" && (c.FirebaseCredsFile != "" || c.FirebaseCredsJSON != "")
}

// CommissionConfig implementation
func (c *Config) GetDefaultCommissionPercentage() float64 { return c.DefaultCommissionPct }

// NotificationConfig implementation
func (c *Config) GetNotificationWorkers() int           { return c.NotificationWorkers }
func (c *Config) GetNotificationQueueSize() int         { return c.NotificationQueueSize }
func (c *Config) GetNotificationTimeout() time.Duration { return c.NotificationTimeout }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:      int32(mustInt(getEnv("DATABASE_MAX_CONNS", "25"))),
		MigrateOnStart:        strings.EqualFold(getEnv("MIGRATE_ON_START", "true"), "true"),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitPerSecond:    mustFloat(getEnv("RATE_LIMIT_PER_SECOND", "20")),
		RateLimitBurst:        mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "notifications"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		PushMaxRetry:          mustInt(getEnv("PUSH_MAX_RETRY", "3")),
		FirebaseProjectID:     getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredsFile:     getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseCredsJSON:     getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		AndroidChannelID:      getEnv("ANDROID_CHANNEL_ID", "lead_updates"),
		DefaultCommissionPct:  mustFloat(getEnv("DEFAULT_COMMISSION_PERCENTAGE", "10")),
		NotificationWorkers:   mustInt(getEnv("NOTIFICATION_WORKERS", "4")),
		NotificationQueueSize: mustInt(getEnv("NOTIFICATION_QUEUE_SIZE", "256")),
		NotificationTimeout:   mustDuration(getEnv("NOTIFICATION_TIMEOUT", "15s")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.DefaultCommissionPct <= 0 || cfg.DefaultCommissionPct > 100 {
		return nil, fmt.Errorf("DEFAULT_COMMISSION_PERCENTAGE must be in (0, 100]")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
