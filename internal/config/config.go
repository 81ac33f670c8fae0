// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the history database (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Optional YAML overrides for the coefficient tables and symbol reference data
	TablesPath    string
	ReferencePath string

	Engine  EngineConfig
	History HistoryConfig
	Archive ArchiveConfig
}

// EngineConfig tunes the stress engine
type EngineConfig struct {
	VolatilityAmplification float64
	Workers                 int // 0 = runtime.NumCPU
	ParallelThreshold       int
}

// HistoryConfig controls run persistence
type HistoryConfig struct {
	Enabled         bool
	RetentionDays   int
	CleanupSchedule string // cron expression with a seconds field
	// MaintenanceSchedule runs integrity check, WAL checkpoint and vacuum
	MaintenanceSchedule string
}

// ArchiveConfig holds S3-compatible report archive settings. Archiving is off when Bucket is empty.
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Enabled reports whether report archiving is configured
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("STRESS_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnvAsInt("STRESS_PORT", 8002),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		TablesPath:    getEnv("STRESS_TABLES_PATH", ""),
		ReferencePath: getEnv("STRESS_REFERENCE_PATH", ""),
		Engine: EngineConfig{
			VolatilityAmplification: getEnvAsFloat("STRESS_VOL_AMPLIFICATION", 0.1),
			Workers:                 getEnvAsInt("STRESS_WORKERS", 0),
			ParallelThreshold:       getEnvAsInt("STRESS_PARALLEL_THRESHOLD", 256),
		},
		History: HistoryConfig{
			Enabled:             getEnvAsBool("STRESS_HISTORY_ENABLED", true),
			RetentionDays:       getEnvAsInt("STRESS_HISTORY_RETENTION_DAYS", 30),
			CleanupSchedule:     getEnv("STRESS_HISTORY_CLEANUP_SCHEDULE", "0 30 3 * * *"),
			MaintenanceSchedule: getEnv("STRESS_HISTORY_MAINTENANCE_SCHEDULE", "0 0 4 * * *"),
		},
		Archive: ArchiveConfig{
			Bucket:          getEnv("STRESS_ARCHIVE_BUCKET", ""),
			Endpoint:        getEnv("STRESS_ARCHIVE_ENDPOINT", ""),
			Region:          getEnv("STRESS_ARCHIVE_REGION", "auto"),
			AccessKeyID:     getEnv("STRESS_ARCHIVE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STRESS_ARCHIVE_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("STRESS_ARCHIVE_PREFIX", "stress-runs/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.History.Enabled {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// HistoryDBPath returns the path of the run history database
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// Validate checks the configuration for out-of-range values
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	amp := c.Engine.VolatilityAmplification
	if math.IsNaN(amp) || math.IsInf(amp, 0) || amp < 0 {
		return fmt.Errorf("invalid volatility amplification %v", amp)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("invalid worker count %d", c.Engine.Workers)
	}
	if c.Engine.ParallelThreshold < 1 {
		return fmt.Errorf("invalid parallel threshold %d", c.Engine.ParallelThreshold)
	}

	if c.History.Enabled {
		if c.History.RetentionDays < 1 {
			return fmt.Errorf("history retention must be at least 1 day, got %d", c.History.RetentionDays)
		}
		if strings.TrimSpace(c.History.CleanupSchedule) == "" {
			return fmt.Errorf("history cleanup schedule is required")
		}
		if strings.TrimSpace(c.History.MaintenanceSchedule) == "" {
			return fmt.Errorf("history maintenance schedule is required")
		}
	}

	if c.Archive.Enabled() && (c.Archive.AccessKeyID == "" || c.Archive.SecretAccessKey == "") {
		return fmt.Errorf("archive credentials are required when STRESS_ARCHIVE_BUCKET is set")
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
