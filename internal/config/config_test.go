package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://shop.example.com
  token: secret
  max_requests_per_second: 3
redis:
  enabled: true
  port: 6380
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, 3, cfg.API.MaxRequestsPerSecond)
	assert.Equal(t, 0, cfg.API.RetryCount)
	assert.Equal(t, 30, cfg.API.Timeout)
	assert.Equal(t, "/api/metal-prices/stream", cfg.API.PriceStreamPath)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, Name: "shop", User: "u", Password: "p"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=shop sslmode=disable", d.DSN())
}
