package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.FreeDailyQuota)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 500, cfg.CacheCleanupBatch)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.InitialBackoff)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxBackoff)
	assert.Equal(t, 50, cfg.MinJobDescription)
	assert.Equal(t, 100, cfg.MinResume)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 10, cfg.GenerateRatePerMinute)
}

func TestFromViperReadsEnvironment(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("FREE_DAILY_QUOTA", "5")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("RETRY_INITIAL_BACKOFF", "10ms")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_BASE_URL", "http://localhost:9999/v1/")
	t.Setenv("CACHE_BACKEND", "PG")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")

	cfg := FromViper(newViper())

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, 5, cfg.FreeDailyQuota)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 10*time.Millisecond, cfg.Retry.InitialBackoff)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "postgres", cfg.CacheBackend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
}

func TestQuotaLocation(t *testing.T) {
	cfg := Config{QuotaTimezone: "UTC"}
	assert.Equal(t, time.UTC, cfg.QuotaLocation())

	cfg.QuotaTimezone = "Local"
	assert.Equal(t, time.Local, cfg.QuotaLocation())

	cfg.QuotaTimezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.QuotaLocation())
}
