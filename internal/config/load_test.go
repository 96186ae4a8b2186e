package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/pagecraft/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagecraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, config.StoreFile, cfg.Store.Driver)
	assert.Equal(t, ".pagecraft/documents", cfg.Store.Dir)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.False(t, cfg.Publish.Enabled())
	assert.Equal(t, "cmp", cfg.Preview.IDPrefix)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
store:
  driver: redis
redis:
  url: redis://cache:6379/2
  lock: true
publish:
  bucket: previews
breaker:
  enabled: true
  max_failures: 3
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, config.StoreRedis, cfg.Store.Driver)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.True(t, cfg.Redis.Lock)
	assert.True(t, cfg.Publish.Enabled())
	assert.Equal(t, 3, cfg.Breaker.MaxFailures)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "untouched keys keep defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("PAGECRAFT_SERVER_PORT", "9090")
	t.Setenv("PAGECRAFT_SERVER_READ_TIMEOUT", "2s")
	t.Setenv("PAGECRAFT_STORE_ENCRYPTION_KEY", strings.Repeat("ab", 32))
	t.Setenv("PAGECRAFT_LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, strings.Repeat("ab", 32), cfg.Store.EncryptionKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationAggregates(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 0
log:
  level: loud
store:
  driver: postgres
  encryption_key: "nothex"
`)
	_, err := config.Load(path)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "server.port")
	assert.Contains(t, msg, "log.level")
	assert.Contains(t, msg, "store.encryption_key")
	assert.Contains(t, msg, "postgres.dsn")
}

func TestDecodeKey(t *testing.T) {
	key, err := config.DecodeKey(strings.Repeat("0f", 32))
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = config.DecodeKey("0f0f")
	assert.ErrorContains(t, err, "32 bytes")
}
