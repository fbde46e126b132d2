package config

import (
	"testing"
	"time"

	shared "lifeops/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedConfig(t *testing.T, extra map[string]string) *shared.Config {
	t.Helper()
	vars := map[string]string{
		"DATABASE_URL": "postgres://localhost/lifeops",
		"AUTH_SECRET":  "0123456789abcdef0123456789abcdef",
	}
	for k, v := range extra {
		vars[k] = v
	}
	cfg, err := shared.LoadFrom(vars)
	require.NoError(t, err)
	return cfg
}

func TestFromShared_Defaults(t *testing.T) {
	cfg := FromShared(sharedConfig(t, nil))

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 7*24*time.Hour, cfg.ExpiresIn)
	assert.Equal(t, 24*time.Hour, cfg.UpdateAge)
	assert.Equal(t, 5*time.Minute, cfg.CacheMaxAge)
	assert.Equal(t, 10*time.Minute, cfg.StateMaxAge)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.CookieHTTPOnly)
	assert.Equal(t, "Lax", cfg.CookieSameSite)
	assert.False(t, cfg.GoogleEnabled())
	assert.Equal(t, "http://localhost:8080/api/auth/callback/google", cfg.GoogleRedirectURL())
}

func TestFromShared_Production(t *testing.T) {
	cfg := FromShared(sharedConfig(t, map[string]string{
		"APP_ENV":              "production",
		"AUTH_BASE_URL":        "https://api.lifeops.app/",
		"GOOGLE_CLIENT_ID":     "id",
		"GOOGLE_CLIENT_SECRET": "secret",
	}))

	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.GoogleEnabled())
	assert.Equal(t, "https://api.lifeops.app/api/auth/callback/google", cfg.GoogleRedirectURL())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name        string
		modify      func(*Config)
		expectedErr string
	}{
		{"empty secret", func(c *Config) { c.Secret = "" }, "auth secret cannot be empty"},
		{"zero expiry", func(c *Config) { c.ExpiresIn = 0 }, "session expiry must be positive"},
		{"update age above expiry", func(c *Config) { c.UpdateAge = c.ExpiresIn + time.Hour }, "session update age"},
		{"zero cache age", func(c *Config) { c.CacheMaxAge = 0 }, "session cache max age"},
		{"bad same site", func(c *Config) { c.CookieSameSite = "sometimes" }, "cookie same site"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := FromShared(sharedConfig(t, nil))
			tc.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestValidate_NormalizesSameSite(t *testing.T) {
	cfg := FromShared(sharedConfig(t, nil))
	cfg.CookieSameSite = "strict"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Strict", cfg.CookieSameSite)
}
