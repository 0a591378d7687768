// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for history.db (always absolute)
	ReportDir string // Where exported comparison reports are written
	LogLevel  string
	LogPretty bool

	HistoryCapacity  int    // Maximum number of snapshots kept in the history
	HistoryNamespace string // Key-value namespace the history list is stored under
	StoreCodec       string // "json" or "msgpack"

	// ComparisonCacheSize bounds the comparison memo. 0 keeps every result.
	ComparisonCacheSize int

	// BackupRetentionDays is how long R2 backups are kept. 0 keeps them forever.
	BackupRetentionDays int

	R2        *R2Config
	Schedules *ScheduleConfig
}

// R2Config holds Cloudflare R2 (S3-compatible) credentials for backups and report archives
type R2Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
}

// Enabled reports whether enough credentials are present to talk to the bucket
func (c *R2Config) Enabled() bool {
	return c != nil && c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.BucketName != ""
}

// ScheduleConfig holds cron expressions for maintenance jobs (seconds field included)
type ScheduleConfig struct {
	Backup      string
	WALCheck    string
	Stats       string
	Maintenance string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("STOCKROOM_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		ReportDir:           getEnv("REPORT_DIR", filepath.Join(absDataDir, "reports")),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("LOG_PRETTY", true),
		HistoryCapacity:     getEnvAsInt("HISTORY_CAPACITY", 50),
		HistoryNamespace:    getEnv("HISTORY_NAMESPACE", "stockroom"),
		StoreCodec:          getEnv("STORE_CODEC", "json"),
		ComparisonCacheSize: getEnvAsInt("COMPARISON_CACHE_SIZE", 0),
		BackupRetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		R2: &R2Config{
			Endpoint:   getEnv("R2_ENDPOINT", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		Schedules: &ScheduleConfig{
			Backup:      getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			WALCheck:    getEnv("WAL_CHECK_SCHEDULE", "0 */30 * * * *"),
			Stats:       getEnv("STATS_SCHEDULE", "0 0 * * * *"),
			Maintenance: getEnv("MAINTENANCE_SCHEDULE", "0 0 2 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.HistoryCapacity < 1 {
		return fmt.Errorf("HISTORY_CAPACITY must be at least 1, got %d", c.HistoryCapacity)
	}
	if c.HistoryNamespace == "" {
		return fmt.Errorf("HISTORY_NAMESPACE must not be empty")
	}
	switch c.StoreCodec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("unsupported STORE_CODEC %q (want json or msgpack)", c.StoreCodec)
	}
	if c.ComparisonCacheSize < 0 {
		return fmt.Errorf("COMPARISON_CACHE_SIZE must not be negative, got %d", c.ComparisonCacheSize)
	}
	if c.BackupRetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative, got %d", c.BackupRetentionDays)
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
