package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://directory.example.com/api
workers:
  submit-profile:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://directory.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, SessionDriverMemory, cfg.Session.Driver)
	assert.Equal(t, 1000, cfg.Analytics.MinDwell)
	assert.Equal(t, "info", cfg.Logging.Level)

	wc := GetWorkerConfig(cfg, "submit-profile")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 30000, wc.Timeout)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_SUPPLIER_API", "http://127.0.0.1:9999/api")
	path := writeConfig(t, `
api:
  base_url: ${TEST_SUPPLIER_API}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/api", cfg.API.BaseURL)
}

func TestLoadFromFile_RejectsRedisWithoutAddress(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://localhost/api
session:
  driver: redis
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.redis.address")
}

func TestLoadFromFile_RejectsUnknownSessionDriver(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://localhost/api
session:
  driver: sqlite
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadFromFile_RejectsNonHTTPBaseURL(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: ftp://example.com
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"send-inquiry": {Enabled: false},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "send-inquiry"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestLoadFromFile_EnvFillsEmptyBaseURL(t *testing.T) {
	t.Setenv("SUPPLIER_API_BASE_URL", "https://staging.example.com")
	path := writeConfig(t, `
logging:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
