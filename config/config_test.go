package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "memory", cfg.RateLimitBackend)
	assert.Equal(t, 5, cfg.SignupLimit)
	assert.Equal(t, time.Hour, cfg.SignupWindow)
	assert.Equal(t, 10*time.Minute, cfg.CommentWindow)
	assert.Equal(t, 15*time.Second, cfg.LLMTimeout)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("LIMIT_COMMENT", "3")
	t.Setenv("LIMIT_COMMENT_WINDOW", "30s")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "redis", cfg.RateLimitBackend)
	assert.Equal(t, 3, cfg.CommentLimit)
	assert.Equal(t, 30*time.Second, cfg.CommentWindow)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DBDriver:             "mysql",
			RateLimitBackend:     "memory",
			AppEnv:               "development",
			JWTSecret:            "your-secret-key",
			SessionSecret:        "your-session-secret",
			APIRequestsPerMinute: 100,
			APIBurst:             10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "sqlite" }, true},
		{"unknown limiter backend", func(c *Config) { c.RateLimitBackend = "memcached" }, true},
		{"default secrets in production", func(c *Config) { c.AppEnv = "production" }, true},
		{"bad timezone", func(c *Config) { c.AppTimezone = "Mars/Olympus" }, true},
		{"zero burst", func(c *Config) { c.APIBurst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
