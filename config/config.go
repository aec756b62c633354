package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"levelbot/database"

	"github.com/caarlos0/env/v11"
)

// Adjustment store backends
const (
	AdjustmentStoreFile = "file"
	AdjustmentStoreS3   = "s3"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Adjustment store configuration
	AdjustmentStore      string `env:"ADJUSTMENT_STORE" envDefault:"file"`
	AdjustmentDir        string `env:"ADJUSTMENT_DIR" envDefault:"adjusted_counts"`
	AdjustmentS3Bucket   string `env:"ADJUSTMENT_S3_BUCKET"`
	AdjustmentS3Prefix   string `env:"ADJUSTMENT_S3_PREFIX" envDefault:"adjusted/"`
	AdjustmentS3Region   string `env:"ADJUSTMENT_S3_REGION" envDefault:"us-east-1"`
	AdjustmentS3Endpoint string `env:"ADJUSTMENT_S3_ENDPOINT"` // S3-compatible endpoint, empty for AWS
	AdjustmentS3Key      string `env:"ADJUSTMENT_S3_ACCESS_KEY"`
	AdjustmentS3Secret   string `env:"ADJUSTMENT_S3_SECRET_KEY"`

	// NATS configuration
	NATSServers string `env:"NATS_SERVERS"` // empty disables event publishing

	// OpenTelemetry configuration
	OTelEnabled              bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelExporterType         string `env:"OTEL_EXPORTER_TYPE" envDefault:"console"`
	OTelOTLPEndpoint         string `env:"OTEL_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelServiceName          string `env:"OTEL_SERVICE_NAME" envDefault:"levelbot"`
	OTelExportIntervalMillis int    `env:"OTEL_EXPORT_INTERVAL_MS" envDefault:"60000"`

	// Game configuration
	BlackjackIdleTimeout time.Duration `env:"BLACKJACK_IDLE_TIMEOUT" envDefault:"10m"`
	DiceReplyTimeout     time.Duration `env:"DICE_REPLY_TIMEOUT" envDefault:"20s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks required values. Token and database are not required when
// ENVIRONMENT=test.
func (c *Config) Validate() error {
	if c.Environment != "test" {
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN is required")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	switch c.AdjustmentStore {
	case AdjustmentStoreFile:
		if c.AdjustmentDir == "" {
			return fmt.Errorf("ADJUSTMENT_DIR is required for the file adjustment store")
		}
	case AdjustmentStoreS3:
		if c.AdjustmentS3Bucket == "" {
			return fmt.Errorf("ADJUSTMENT_S3_BUCKET is required for the s3 adjustment store")
		}
	default:
		return fmt.Errorf("unknown ADJUSTMENT_STORE %q", c.AdjustmentStore)
	}

	switch c.OTelExporterType {
	case "console", "otlp", "none":
	default:
		return fmt.Errorf("unknown OTEL_EXPORTER_TYPE %q", c.OTelExporterType)
	}

	if c.BlackjackIdleTimeout <= 0 {
		return fmt.Errorf("BLACKJACK_IDLE_TIMEOUT must be positive")
	}
	if c.DiceReplyTimeout <= 0 {
		return fmt.Errorf("DICE_REPLY_TIMEOUT must be positive")
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:              "test",
		DiscordToken:             "test-token",
		AdjustmentStore:          AdjustmentStoreFile,
		AdjustmentDir:            os.TempDir(),
		AdjustmentS3Prefix:       "adjusted/",
		AdjustmentS3Region:       "us-east-1",
		OTelExporterType:         "none",
		OTelServiceName:          "levelbot-test",
		OTelExportIntervalMillis: 60000,
		BlackjackIdleTimeout:     10 * time.Minute,
		DiceReplyTimeout:         20 * time.Second,
		LogLevel:                 "debug",
	}
}
