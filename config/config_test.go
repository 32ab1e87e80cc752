package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// clearEnv blanks the overrides a developer shell might export.
func clearEnv(t *testing.T) {
	for _, key := range []string{"APP_PORT", "JWT_SECRET", "SESSION_SECRET", "DB_DRIVER", "DB_PORT", "PAGE_CACHE_SECONDS", "ADMIN_USERNAMES", "STORAGE_TYPE", "MEDIA_MAX_WIDTH", "REDIS_PORT", "RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
app:
  AppPort: "9000"
  JWTSecret: file-secret
  SessionSecret: session-secret
  AdminUsernames: [root]
database:
  Driver: sqlite
  DatabaseURI: "file::memory:"
cache:
  PageSeconds: 5
media:
  MaxWidth: 640
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5, cfg.PageCacheSeconds)
	assert.Equal(t, 640, cfg.MediaMaxWidth)
	assert.True(t, cfg.IsAdmin("ROOT"))
	assert.False(t, cfg.IsAdmin("guest"))
	// defaults fill the rest
	assert.Equal(t, "disk", cfg.StorageType)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestLoadFromJSONWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"app": {"JWTSecret": "file-secret", "SessionSecret": "s"}, "database": {"Driver": "postgres"}}`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("PAGE_CACHE_SECONDS", "45")
	t.Setenv("ADMIN_USERNAMES", " alice , bob ,")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 45, cfg.PageCacheSeconds)
	assert.Equal(t, []string{"alice", "bob"}, cfg.AdminUsernames)
	assert.Equal(t, "5432", cfg.DBPort)
}

func TestLoadFromDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("SESSION_SECRET", "y")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 20, cfg.PageCacheSeconds)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadFromErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_SECRET", "")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("SESSION_SECRET", "y")
	t.Setenv("REDIS_PORT", "six")
	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "REDIS_PORT")

	broken := writeFile(t, "config.yaml", "app: [")
	_, err = LoadFrom(broken)
	assert.Error(t, err)
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(AppConfig{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported")
}

func TestOpenDatabaseSQLite(t *testing.T) {
	db, err := OpenDatabase(AppConfig{DBDriver: "sqlite", DatabaseURI: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
