package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AURELIA_APP_ENV", "development")
	t.Setenv("AURELIA_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("AURELIA_CATALOG_BASE_URL", "http://catalog.local")
	t.Setenv("AURELIA_COUPON_BASE_URL", "http://coupon.local")
	t.Setenv("AURELIA_ORDER_BASE_URL", "http://order.local")
	t.Setenv("AURELIA_AUTH_BASE_URL", "http://auth.local")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.True(t, cfg.App.IsDev())
	assert.False(t, cfg.App.IsProd())

	assert.Equal(t, 10080, cfg.Session.TTLMinutes)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL())

	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Checkout.IdempotencyTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AURELIA_APP_ENV", "production")
	t.Setenv("AURELIA_APP_PORT", "9090")
	t.Setenv("AURELIA_SESSION_TTL_MINUTES", "60")
	t.Setenv("AURELIA_UPSTREAM_TIMEOUT", "3s")
	t.Setenv("AURELIA_CORS_ALLOWED_ORIGINS", "https://shop.aurelia.example,https://admin.aurelia.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProd())
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Session.TTL())
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Len(t, cfg.CORS.AllowedOrigins, 2)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AURELIA_REDIS_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestSessionTTLNonPositive(t *testing.T) {
	cfg := SessionConfig{TTLMinutes: 0}
	assert.Equal(t, time.Duration(0), cfg.TTL())
}
