package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
fetcher:
  request_timeout: 10s
  retry_backoff: 10s
  rate_limit_per_minute: 30
markets:
  ttl: 5m
  per_page: 50
  currency: usd
history:
  windows: ["1h", "24h", "7d"]
api_key: demo-key
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Fetcher.GetRequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.Fetcher.GetRetryBackoff())
	assert.Equal(t, 30, cfg.Fetcher.RateLimitPerMinute)
	assert.Equal(t, 5*time.Minute, cfg.Markets.GetTTL())
	assert.Equal(t, 50, cfg.Markets.GetPerPage())
	assert.Equal(t, "usd", cfg.Markets.GetCurrency())
	assert.Equal(t, []string{"1h", "24h", "7d"}, cfg.History.GetWindows())
	assert.Equal(t, "demo-key", cfg.APIKey)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeTempConfig(t, `{}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Fetcher.GetRequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.Fetcher.GetRetryBackoff())
	assert.Equal(t, 5*time.Minute, cfg.Markets.GetTTL())
	assert.Equal(t, 50, cfg.Markets.GetPerPage())
	assert.Equal(t, "usd", cfg.Markets.GetCurrency())
	assert.Equal(t, []string{"1h", "24h", "7d", "30d", "180d", "365d"}, cfg.History.GetWindows())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidPerPage(t *testing.T) {
	path := writeTempConfig(t, `
markets:
  per_page: 500
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "per_page")
}
