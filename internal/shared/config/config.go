package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"interview-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string
	RedisURL        string
	CacheBackend    string
	JWTSecret       string
	LogJSON         bool
	LogLevel        string

	LLM   LLMConfig
	Retry RetryConfig

	RequestTimeout        time.Duration
	FreeDailyQuota        int
	QuotaTimezone         string
	CacheTTL              time.Duration
	CacheCleanupBatch     int
	GenerateRatePerMinute int
	MinJobDescription     int
	MinResume             int
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider       string
	BaseURL        string
	APIKey         string
	Model          string
	GeminiAPIKey   string
	AttemptTimeout time.Duration
}

// RetryConfig controls model invocation retries.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("port", "8080")
	v.SetDefault("cors_allow_origins", "http://localhost:8501")
	v.SetDefault("cache_backend", "")
	v.SetDefault("log_json", false)
	v.SetDefault("log_level", "info")

	v.SetDefault("llm_provider", "openai")
	v.SetDefault("llm_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm_attempt_timeout", 30*time.Second)

	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_initial_backoff", 2*time.Second)
	v.SetDefault("retry_max_backoff", 10*time.Second)

	v.SetDefault("request_timeout", 75*time.Second)
	v.SetDefault("free_daily_quota", 3)
	v.SetDefault("quota_timezone", "Local")
	v.SetDefault("cache_ttl", 24*time.Hour)
	v.SetDefault("cache_cleanup_batch", 500)
	v.SetDefault("generate_rate_per_minute", 10)
	v.SetDefault("min_jd_chars", 50)
	v.SetDefault("min_resume_chars", 100)
}

// Load reads configuration from the environment and an optional local .env file.
func Load() Config {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	// Best-effort load of a local env file for dev convenience.
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err == nil {
		telemetry.Info("config.env_file_loaded", map[string]any{"path": v.ConfigFileUsed()})
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("env"))
	dbURL := strings.TrimSpace(v.GetString("database_url"))
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:            v.GetString("port"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(v.GetString("cors_allow_origins")),
		DatabaseURL:     dbURL,
		RedisURL:        strings.TrimSpace(v.GetString("redis_url")),
		CacheBackend:    normalizeBackend(v.GetString("cache_backend")),
		JWTSecret:       v.GetString("jwt_secret"),
		LogJSON:         v.GetBool("log_json") || env == "production",
		LogLevel:        v.GetString("log_level"),
		LLM: LLMConfig{
			Provider:       normalizeProvider(v.GetString("llm_provider")),
			BaseURL:        strings.TrimRight(strings.TrimSpace(v.GetString("llm_base_url")), "/"),
			APIKey:         strings.TrimSpace(v.GetString("llm_api_key")),
			Model:          strings.TrimSpace(v.GetString("llm_model")),
			GeminiAPIKey:   strings.TrimSpace(v.GetString("gemini_api_key")),
			AttemptTimeout: v.GetDuration("llm_attempt_timeout"),
		},
		Retry: RetryConfig{
			MaxAttempts:    v.GetInt("retry_max_attempts"),
			InitialBackoff: v.GetDuration("retry_initial_backoff"),
			MaxBackoff:     v.GetDuration("retry_max_backoff"),
		},
		RequestTimeout:        v.GetDuration("request_timeout"),
		FreeDailyQuota:        v.GetInt("free_daily_quota"),
		QuotaTimezone:         v.GetString("quota_timezone"),
		CacheTTL:              v.GetDuration("cache_ttl"),
		CacheCleanupBatch:     v.GetInt("cache_cleanup_batch"),
		GenerateRatePerMinute: v.GetInt("generate_rate_per_minute"),
		MinJobDescription:     v.GetInt("min_jd_chars"),
		MinResume:             v.GetInt("min_resume_chars"),
	}
}

// QuotaLocation resolves the time zone whose midnight resets the daily quota.
func (c Config) QuotaLocation() *time.Location {
	name := strings.TrimSpace(c.QuotaTimezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		telemetry.Warn("config.quota_timezone_invalid", map[string]any{"timezone": name, "error": err})
		return time.Local
	}
	return loc
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return ""
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "none", "disabled":
		return "none"
	default:
		return "openai"
	}
}
