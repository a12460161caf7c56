package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "API_URL", "DB_PATH", "SESSION_SECRET", "SESSION_TTL", "COOKIE_SECURE",
		"LOG_LEVEL", "LOG_FORMAT", "SITE_NAME", "SITE_URL", "SITE_AUTHOR", "SITE_DESCRIPTION",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, "data/portfolio.db", cfg.DBPath)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.GeneratedSecret)
	assert.Len(t, cfg.SessionSecret, 64)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("API_URL", "https://api.example.com/api")
	t.Setenv("SESSION_SECRET", "0123456789abcdef-secret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("SITE_URL", "https://me.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "https://me.example.com", cfg.Site.URL)
	assert.False(t, cfg.GeneratedSecret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "non-numeric port", key: "PORT", val: "http"},
		{name: "port out of range", key: "PORT", val: "70000"},
		{name: "relative api url", key: "API_URL", val: "/api"},
		{name: "short secret", key: "SESSION_SECRET", val: "short"},
		{name: "bad ttl", key: "SESSION_TTL", val: "forever"},
		{name: "bad bool", key: "COOKIE_SECURE", val: "maybe"},
		{name: "bad level", key: "LOG_LEVEL", val: "loud"},
		{name: "bad format", key: "LOG_FORMAT", val: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
