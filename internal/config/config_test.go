package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("STRESS_DATA_DIR", dataDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.DirExists(t, dataDir)
	assert.Equal(t, 8002, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 0.1, cfg.Engine.VolatilityAmplification)
	assert.Equal(t, 0, cfg.Engine.Workers)
	assert.Equal(t, 256, cfg.Engine.ParallelThreshold)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 30, cfg.History.RetentionDays)
	assert.Equal(t, "0 30 3 * * *", cfg.History.CleanupSchedule)
	assert.Equal(t, "0 0 4 * * *", cfg.History.MaintenanceSchedule)
	assert.False(t, cfg.Archive.Enabled())
	assert.Equal(t, "auto", cfg.Archive.Region)
	assert.Equal(t, filepath.Join(dataDir, "history.db"), cfg.HistoryDBPath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STRESS_DATA_DIR", t.TempDir())
	t.Setenv("STRESS_PORT", "9100")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("STRESS_VOL_AMPLIFICATION", "0.25")
	t.Setenv("STRESS_WORKERS", "4")
	t.Setenv("STRESS_HISTORY_RETENTION_DAYS", "7")
	t.Setenv("STRESS_ARCHIVE_BUCKET", "reports")
	t.Setenv("STRESS_ARCHIVE_ACCESS_KEY_ID", "key")
	t.Setenv("STRESS_ARCHIVE_SECRET_ACCESS_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 0.25, cfg.Engine.VolatilityAmplification)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 7, cfg.History.RetentionDays)
	assert.True(t, cfg.Archive.Enabled())
	assert.Equal(t, "reports", cfg.Archive.Bucket)
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("STRESS_DATA_DIR", t.TempDir())
	t.Setenv("STRESS_PORT", "not-a-port")
	t.Setenv("STRESS_VOL_AMPLIFICATION", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8002, cfg.Port)
	assert.Equal(t, 0.1, cfg.Engine.VolatilityAmplification)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:    8002,
			Engine:  EngineConfig{VolatilityAmplification: 0.1, ParallelThreshold: 256},
			History: HistoryConfig{Enabled: true, RetentionDays: 30, CleanupSchedule: "@daily", MaintenanceSchedule: "@daily"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port out of range", func(c *Config) { c.Port = 70000 }, true},
		{"negative amplification", func(c *Config) { c.Engine.VolatilityAmplification = -0.1 }, true},
		{"negative workers", func(c *Config) { c.Engine.Workers = -1 }, true},
		{"zero threshold", func(c *Config) { c.Engine.ParallelThreshold = 0 }, true},
		{"zero retention", func(c *Config) { c.History.RetentionDays = 0 }, true},
		{"zero retention with history disabled", func(c *Config) {
			c.History.Enabled = false
			c.History.RetentionDays = 0
		}, false},
		{"archive without credentials", func(c *Config) { c.Archive.Bucket = "reports" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
