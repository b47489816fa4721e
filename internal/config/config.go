// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for databases (always absolute)
	TraderAPIURL     string // Strategy backend (health, strategies, positions, screener)
	AutotradeAPIURL  string // Autotrade Integration Service (portfolio, orders, performance)
	DefaultAccountID string // Account used for scheduled portfolio polls
	LogLevel         string
	Port             int
	DevMode          bool

	// Poll intervals for the panel refresh cycles
	StatusPollInterval    time.Duration // health + active strategies
	PositionsPollInterval time.Duration // live positions + portfolio snapshot

	// HTTP timeout for bridge command calls
	BridgeTimeout time.Duration

	// TTL for last-known-good bridge payloads served as stale fallbacks
	StalePayloadTTL time.Duration

	Backup *BackupConfig
}

// BackupConfig holds snapshot backup configuration (S3-compatible storage)
type BackupConfig struct {
	Enabled       bool
	Endpoint      string // S3-compatible endpoint (e.g. Cloudflare R2)
	Bucket        string
	AccessKeyID   string
	SecretKey     string
	Prefix        string
	RetentionDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check BRIDGE_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path, ensure it exists
	dataDir := getEnv("BRIDGE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("BRIDGE_PORT", 8050),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		TraderAPIURL:     getEnv("TRADER_API_URL", "http://localhost:8000"),
		AutotradeAPIURL:  getEnv("AUTOTRADE_API_URL", "http://localhost:8001"),
		DefaultAccountID: getEnv("AUTOTRADE_ACCOUNT_ID", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),

		StatusPollInterval:    getEnvAsDuration("STATUS_POLL_INTERVAL", 5*time.Second),
		PositionsPollInterval: getEnvAsDuration("POSITIONS_POLL_INTERVAL", 30*time.Second),
		BridgeTimeout:         getEnvAsDuration("BRIDGE_TIMEOUT", 60*time.Second),
		StalePayloadTTL:       getEnvAsDuration("STALE_PAYLOAD_TTL", 15*time.Minute),

		Backup: loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.StatusPollInterval <= 0 || c.PositionsPollInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.Backup != nil && c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			return fmt.Errorf("backup enabled but BACKUP_BUCKET not set")
		}
		if c.Backup.AccessKeyID == "" || c.Backup.SecretKey == "" {
			return fmt.Errorf("backup enabled but credentials not set")
		}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// loadBackupConfig loads snapshot backup configuration from environment variables
func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:       getEnvAsBool("BACKUP_ENABLED", false),
		Endpoint:      getEnv("BACKUP_S3_ENDPOINT", ""),
		Bucket:        getEnv("BACKUP_BUCKET", ""),
		AccessKeyID:   getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretKey:     getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Prefix:        getEnv("BACKUP_PREFIX", "autotrade-bridge"),
		RetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
}
