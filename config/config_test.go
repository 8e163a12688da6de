package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// No config file in an empty dir: every section must still come back
	// populated from the defaults
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Address)
	require.Equal(t, 30*time.Second, cfg.Server.Timeout)

	require.NotEmpty(t, cfg.DB.DSN)
	require.Equal(t, 50, cfg.DB.MaxOpenConns)
	require.Equal(t, 10, cfg.DB.MaxIdleConns)
	require.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)

	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.True(t, cfg.Redis.Enabled)

	// The import knobs gate every workbook ingest; zero values here would
	// reject valid workbooks (scan depth) or panic on the batch modulo
	require.Equal(t, 120, cfg.Import.HeaderScanRows)
	require.Equal(t, 200, cfg.Import.BlankRowStreak)
	require.Equal(t, 200, cfg.Import.BatchSize)

	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("FLETES_IMPORT_BATCH_SIZE", "50")
	t.Setenv("FLETES_SERVER_ADDRESS", "127.0.0.1:9090")
	t.Setenv("FLETES_REDIS_ENABLED", "false")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 50, cfg.Import.BatchSize)
	require.Equal(t, "127.0.0.1:9090", cfg.Server.Address)
	require.False(t, cfg.Redis.Enabled)

	// Untouched knobs keep their defaults
	require.Equal(t, 120, cfg.Import.HeaderScanRows)
	require.Equal(t, 200, cfg.Import.BlankRowStreak)
}
