package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ID_ENCRYPT_KEY", "0123456789abcdef")
	t.Setenv("DB_DSN", "host=localhost user=sf dbname=sf")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"APP_PORT", "STORAGE_BACKEND", "JWT_EXPIRES_MIN", "REDIS_ADDR", "REDIS_DB", "LOG_LEVEL", "COOKIE_SECURE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, 10080, cfg.JWTExpiresMin)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "host=localhost user=sf dbname=sf", cfg.DBDSN)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "Memory")
	t.Setenv("DB_DSN", "")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("JWT_EXPIRES_MIN", "60")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()
	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Empty(t, cfg.DBDSN)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 60, cfg.JWTExpiresMin)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Run("jwt secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_SECRET", "")
		assert.PanicsWithValue(t, "missing env: JWT_SECRET", func() { Load() })
	})
	t.Run("dsn for postgres", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORAGE_BACKEND", "postgres")
		t.Setenv("DB_DSN", "")
		assert.PanicsWithValue(t, "missing env: DB_DSN", func() { Load() })
	})
	t.Run("id key length", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ID_ENCRYPT_KEY", "short")
		assert.Panics(t, func() { Load() })
	})
	t.Run("unknown backend", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORAGE_BACKEND", "mongo")
		assert.Panics(t, func() { Load() })
	})
}
