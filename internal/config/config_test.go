package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/clinic-client/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url = "https://clinic.example.com/api/v1"
timeout_seconds = 10
data_dir = "/var/lib/clinic"
redis_addr = "localhost:6379"
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://clinic.example.com/api/v1", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "/var/lib/clinic", cfg.DataDir)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, filepath.Join("/var/lib/clinic", "clinic-client.json"), cfg.StorePath())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url = "https://clinic.example.com/api/v1"
timeout_seconds = 10
`), 0o600))

	t.Setenv("CLINIC_BASE_URL", "https://staging.example.com/api/v1")
	t.Setenv("CLINIC_TIMEOUT_SECONDS", "5")
	t.Setenv("CLINIC_REDIS_ADDR", "redis:6379")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/api/v1", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}

func TestInvalidTimeoutEnv(t *testing.T) {
	t.Setenv("CLINIC_TIMEOUT_SECONDS", "not-a-number")
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	t.Setenv("CLINIC_TIMEOUT_SECONDS", "0")
	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`base_url = [`), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
