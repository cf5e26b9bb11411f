package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cashlytic")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 10, cfg.RateLimitHour)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 60*time.Second, cfg.ModelTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.DemoMode)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("RATE_LIMIT_PER_HOUR", "25")
	t.Setenv("MODEL_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, 25, cfg.RateLimitHour)
	assert.Equal(t, 5*time.Second, cfg.ModelTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{Store: "postgres", DatabaseURL: "postgres://x", JWTSecret: "s", RateLimitHour: 10}
	require.NoError(t, base.Validate())

	noDB := base
	noDB.DatabaseURL = ""
	assert.EqualError(t, noDB.Validate(), "DATABASE_URL is required")

	noSecret := base
	noSecret.JWTSecret = ""
	assert.EqualError(t, noSecret.Validate(), "JWT_SECRET is required")

	badStore := base
	badStore.Store = "sqlite"
	assert.Error(t, badStore.Validate())
}
