package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// General
	Debug bool
	Port  string

	// YouTube Data API
	YouTubeAPIKey     string
	MaxResults        int
	RegionCode        string
	RelevanceLanguage string
	SearchOrder       string

	// Fetch resilience
	RetryAttempts int
	RetryBackoff  time.Duration

	// Competitor scoring weights
	EngagementWeight float64
	RelevanceWeight  float64

	// Export
	ExportDir string

	// Optional export upload (Azure Blob Storage)
	StorageAccount   string
	StorageContainer string

	// Batch mode
	BatchKeywords []string
	BatchSchedule string // cron expression, empty disables scheduling

	// Notification configuration
	WebhookURL        string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Debug: getBoolEnv("DEBUG", false),
		Port:  getEnv("PORT", "8080"),

		YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
		MaxResults:        getIntEnv("MAX_RESULTS", 50),
		RegionCode:        getEnv("REGION_CODE", "US"),
		RelevanceLanguage: getEnv("RELEVANCE_LANGUAGE", "en"),
		SearchOrder:       getEnv("SEARCH_ORDER", "viewCount"),

		RetryAttempts: getIntEnv("RETRY_ATTEMPTS", 2),
		RetryBackoff:  time.Duration(getIntEnv("RETRY_BACKOFF_MS", 500)) * time.Millisecond,

		EngagementWeight: getFloatEnv("ENGAGEMENT_WEIGHT", 0.7),
		RelevanceWeight:  getFloatEnv("RELEVANCE_WEIGHT", 0.3),

		ExportDir: getEnv("EXPORT_DIR", "exports"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "exports"),

		BatchKeywords: getSliceEnv("BATCH_KEYWORDS", nil),
		BatchSchedule: getEnv("BATCH_SCHEDULE", ""),

		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("YOUTUBE_API_KEY is required")
	}

	if c.MaxResults < 1 {
		return fmt.Errorf("MAX_RESULTS must be at least 1")
	}

	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1")
	}

	if c.EngagementWeight < 0 || c.RelevanceWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
