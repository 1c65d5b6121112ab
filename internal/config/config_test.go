package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.App.Env)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "authcore", cfg.JWT.Issuer)
	require.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	require.Equal(t, 720*time.Hour, cfg.JWT.RefreshTTL)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
app:
  env: prod
server:
  addr: ":9999"
storage:
  dsn: postgres://localhost/authcore
jwt:
  secret: 0123456789abcdef0123456789abcdef
  access_ttl: 10m
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.App.Env)
	require.Equal(t, ":9999", cfg.Server.Addr)
	// Driver is inferred from the DSN.
	require.Equal(t, "postgres", cfg.Storage.Driver)
	require.Equal(t, 10*time.Minute, cfg.JWT.AccessTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ]["), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTHCORE_ADDR", ":7070")
	t.Setenv("STORAGE_DSN", "postgres://env/authcore")
	t.Setenv("CACHE_KIND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_ACCESS_TTL", "90s")
	t.Setenv("JWT_REFRESH_TTL", "48h")
	t.Setenv("CACHE_TTL", "45s")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, "postgres://env/authcore", cfg.Storage.DSN)
	require.Equal(t, "postgres", cfg.Storage.Driver)
	require.Equal(t, "redis", cfg.Cache.Kind)
	require.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	require.Equal(t, 90*time.Second, cfg.JWT.AccessTTL)
	require.Equal(t, 48*time.Hour, cfg.JWT.RefreshTTL)
	require.Equal(t, 45*time.Second, cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	// No secret.
	require.Error(t, cfg.Validate())

	// Too short.
	cfg.JWT.Secret = "short"
	require.Error(t, cfg.Validate())

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, cfg.Validate())

	// Postgres without DSN.
	cfg.Storage.Driver = "postgres"
	require.Error(t, cfg.Validate())
	cfg.Storage.DSN = "postgres://localhost/authcore"
	require.NoError(t, cfg.Validate())

	// Redis cache without addr.
	cfg.Cache.Kind = "redis"
	require.Error(t, cfg.Validate())
	cfg.Cache.Redis.Addr = "localhost:6379"
	require.NoError(t, cfg.Validate())
}
