package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	strs "dossier/pkg/platform/strings"
)

// EnvPrefix namespaces environment overrides. Nested keys are separated by
// a double underscore: DOSSIER_DATABASE__URL sets database.url.
const EnvPrefix = "DOSSIER_"

// Config is the full process configuration.
type Config struct {
	Environment string         `koanf:"environment"`
	Server      ServerConfig   `koanf:"server"`
	Database    DatabaseConfig `koanf:"database"`
	Redis       RedisConfig    `koanf:"redis"`
	Audit       AuditConfig    `koanf:"audit"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr          string `koanf:"addr"`
	JWTSigningKey string `koanf:"jwt_signing_key"`
	JWTIssuer     string `koanf:"jwt_issuer"`
	// AdminToken, when set, is required as X-Admin-Token on actor
	// registration and audit queries.
	AdminToken      string        `koanf:"admin_token"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig selects the PostgreSQL backend. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	Migrate         bool          `koanf:"migrate"`
}

// RedisConfig configures the optional latest-session cache. An empty URL
// disables it.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// AuditConfig tunes the change-audit pipeline.
type AuditConfig struct {
	// Denylist adds entity types to the built-in set that is never observed.
	Denylist         []string      `koanf:"denylist"`
	LoopbackOrigin   string        `koanf:"loopback_origin"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`
	SessionCacheTTL  time.Duration `koanf:"session_cache_ttl"`
	BreakerThreshold int           `koanf:"breaker_threshold"`
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Addr:            ":8080",
			JWTSigningKey:   "dev-secret-key-change-in-production",
			JWTIssuer:       "dossier",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			Migrate:         true,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Audit: AuditConfig{
			LoopbackOrigin:   "127.0.0.1",
			WriteTimeout:     2 * time.Second,
			SessionCacheTTL:  5 * time.Minute,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
	}
}

// Load reads the optional YAML file at path, then overlays DOSSIER_*
// environment variables on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Audit.Denylist = strs.Normalize(cfg.Audit.Denylist)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.JWTSigningKey == "" {
		return fmt.Errorf("server.jwt_signing_key is required")
	}
	for key, v := range map[string]int{
		"database.max_open_conns": c.Database.MaxOpenConns,
		"database.max_idle_conns": c.Database.MaxIdleConns,
		"redis.pool_size":         c.Redis.PoolSize,
		"redis.min_idle_conns":    c.Redis.MinIdleConns,
		"audit.breaker_threshold": c.Audit.BreakerThreshold,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative", key)
		}
	}
	for key, d := range map[string]time.Duration{
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
		"database.conn_max_lifetime": c.Database.ConnMaxLifetime,
		"redis.dial_timeout":         c.Redis.DialTimeout,
		"redis.read_timeout":         c.Redis.ReadTimeout,
		"redis.write_timeout":        c.Redis.WriteTimeout,
		"audit.write_timeout":        c.Audit.WriteTimeout,
		"audit.session_cache_ttl":    c.Audit.SessionCacheTTL,
		"audit.breaker_cooldown":     c.Audit.BreakerCooldown,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be non-negative", key)
		}
	}
	return nil
}

// IsProduction reports whether the process runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
