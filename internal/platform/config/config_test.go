package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "127.0.0.1", cfg.Audit.LoopbackOrigin)
	assert.Equal(t, 5, cfg.Audit.BreakerThreshold)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dossier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
server:
  addr: ":9090"
audit:
  denylist: [Draft, " Attachment", Draft, ""]
  write_timeout: 750ms
`), 0o600))

	t.Setenv("DOSSIER_SERVER__ADDR", ":7070")
	t.Setenv("DOSSIER_DATABASE__URL", "postgres://localhost/dossier")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "postgres://localhost/dossier", cfg.Database.URL)
	assert.Equal(t, []string{"Draft", "Attachment"}, cfg.Audit.Denylist)
	assert.Equal(t, 750*time.Millisecond, cfg.Audit.WriteTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, 5*time.Minute, cfg.Audit.SessionCacheTTL)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Audit.BreakerThreshold = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNegativeValues(t *testing.T) {
	tests := []struct {
		key    string
		mutate func(*Config)
	}{
		{"server.shutdown_timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }},
		{"database.max_open_conns", func(c *Config) { c.Database.MaxOpenConns = -1 }},
		{"database.max_idle_conns", func(c *Config) { c.Database.MaxIdleConns = -1 }},
		{"database.conn_max_lifetime", func(c *Config) { c.Database.ConnMaxLifetime = -time.Minute }},
		{"redis.pool_size", func(c *Config) { c.Redis.PoolSize = -1 }},
		{"redis.min_idle_conns", func(c *Config) { c.Redis.MinIdleConns = -1 }},
		{"redis.dial_timeout", func(c *Config) { c.Redis.DialTimeout = -time.Second }},
		{"redis.read_timeout", func(c *Config) { c.Redis.ReadTimeout = -time.Second }},
		{"redis.write_timeout", func(c *Config) { c.Redis.WriteTimeout = -time.Second }},
		{"audit.write_timeout", func(c *Config) { c.Audit.WriteTimeout = -time.Millisecond }},
		{"audit.session_cache_ttl", func(c *Config) { c.Audit.SessionCacheTTL = -time.Minute }},
		{"audit.breaker_cooldown", func(c *Config) { c.Audit.BreakerCooldown = -time.Second }},
		{"audit.breaker_threshold", func(c *Config) { c.Audit.BreakerThreshold = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoad_RejectsNegativeEnvOverride(t *testing.T) {
	t.Setenv("DOSSIER_AUDIT__SESSION_CACHE_TTL", "-5m")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit.session_cache_ttl")
}
