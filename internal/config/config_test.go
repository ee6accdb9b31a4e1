package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammadpnp/employee-import/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 10, cfg.Import.Workers)
	assert.Equal(t, 500, cfg.Import.ChunkSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Import.PollInterval)
	assert.Equal(t, time.Minute, cfg.Import.TaskLease)
	assert.Equal(t, 5, cfg.Import.MaxAttempts)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadSize)
	assert.Equal(t, "employee_import_done", cfg.Import.NotifyTemplate)
	assert.Equal(t, 25, cfg.SMTP.Port)
	assert.Equal(t, 30*time.Second, cfg.SMTP.Timeout)
	assert.NoError(t, cfg.RequireDatabase())
}

func TestLoadClampsWorkers(t *testing.T) {
	for raw, want := range map[string]int{"0": 10, "-2": 10, "25": 10, "4": 4} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("IMPORT_WORKERS", raw)

			cfg, err := config.Load()
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Import.Workers)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("IMPORT_CHUNK_SIZE=42\nSMTP_HOST=smtp.local\nPUBLIC_BASE_URL=https://imports.example.com/\n"), 0o600))
	t.Setenv("IMPORT_CHUNK_SIZE", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	os.Unsetenv("IMPORT_CHUNK_SIZE")
	os.Unsetenv("SMTP_HOST")
	os.Unsetenv("PUBLIC_BASE_URL")

	cfg, err := config.Load(file, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Import.ChunkSize)
	assert.Equal(t, "smtp.local", cfg.SMTP.Host)
	assert.Equal(t, "https://imports.example.com", cfg.PublicBaseURL)
}

func TestRequireDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Error(t, cfg.RequireDatabase())
}
