package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"interview-backend/internal/cache"
	"interview-backend/internal/generation"
	"interview-backend/internal/llm"
	"interview-backend/internal/llm/gemini"
	"interview-backend/internal/llm/openai"
	"interview-backend/internal/services/health"
	"interview-backend/internal/shared/auth"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server"
	"interview-backend/internal/shared/storage/db"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/tier"
	"interview-backend/internal/usage"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client

	Tokens     *auth.Tokens
	Cache      *cache.Cache
	Tiers      *tier.Resolver
	Recorder   *usage.Recorder
	LLM        llm.Client
	Retrier    *llm.Retrier
	Generation *generation.Service

	GenerationHandler *generation.Handler
	UsageHandler      *usage.Handler
	TierHandler       *tier.Handler
}

// Build prepares every dependency and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app, err := BuildCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.Env)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Tokens = tokens

	llmClient, err := buildLLM(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.LLM = llmClient

	retrier := llm.NewRetrier(llm.RetryPolicy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialBackoff,
		MaxInterval:     cfg.Retry.MaxBackoff,
		AttemptTimeout:  cfg.LLM.AttemptTimeout,
	})
	retrier.OnRetry = func(attempt int, wait time.Duration, err error) {
		metrics.IncLLMRetries()
	}
	app.Retrier = retrier

	app.Generation = &generation.Service{
		Tiers:             app.Tiers,
		Cache:             app.Cache,
		Quota:             app.Recorder.Quota(),
		Usage:             app.Recorder,
		Retrier:           retrier,
		LLM:               llmClient,
		MinJobDescription: cfg.MinJobDescription,
		MinResume:         cfg.MinResume,
		Timeout:           cfg.RequestTimeout,
	}
	app.GenerationHandler = generation.NewHandler(app.Generation, app.Cache)
	app.UsageHandler = usage.NewHandler(app.Recorder, app.Tiers)
	app.TierHandler = tier.NewHandler(app.Tiers)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Tokens:            tokens,
		Tiers:             app.Tiers,
		MetricSink:        app.Recorder,
		Health:            app.healthChecks(),
		GenerationHandler: app.GenerationHandler,
		UsageHandler:      app.UsageHandler,
		TierHandler:       app.TierHandler,
	})
	return app, nil
}

// BuildCore connects storage and builds the cache, tier resolver and usage
// recorder. Maintenance commands use it without an HTTP router or model client.
func BuildCore(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := buildRedis(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Redis: rdb}

	backend, err := buildCacheBackend(cfg, sqlDB, rdb)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Cache = cache.New(backend,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithCleanupBatch(cfg.CacheCleanupBatch),
	)

	var tierRepo tier.Repo = tier.NewMemoryRepo()
	var store usage.Store = usage.NewMemoryStore()
	var counter usage.Counter = usage.NewMemoryCounter()
	if sqlDB != nil {
		tierRepo = tier.NewPGRepo(sqlDB)
		store = usage.NewPGStore(sqlDB)
		counter = usage.NewPGCounter(sqlDB)
	}
	if rdb != nil {
		counter = usage.NewRedisCounter(rdb)
	}
	app.Tiers = tier.NewResolver(tierRepo)

	limit := cfg.FreeDailyQuota
	if limit <= 0 {
		limit = usage.DefaultFreeDailyLimit
	}
	app.Recorder = usage.NewRecorder(store, usage.NewQuota(counter, limit, cfg.QuotaLocation()))

	telemetry.Info("bootstrap.storage", map[string]any{
		"postgres":      sqlDB != nil,
		"redis":         rdb != nil,
		"cache_backend": fmt.Sprintf("%T", backend),
		"quota_counter": fmt.Sprintf("%T", counter),
	})
	return app, nil
}

func (a *App) healthChecks() *health.Service {
	svc := health.NewService(2 * time.Second)
	if a.DB != nil {
		svc.Register("postgres", a.DB.PingContext)
	}
	if a.Redis != nil {
		rdb := a.Redis
		svc.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return svc
}

// Close releases database and Redis connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	closeDB(a.DB)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_url_empty", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		if cfg.CacheBackend == "redis" {
			return nil, errors.New("CACHE_BACKEND=redis requires REDIS_URL")
		}
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		if cfg.IsDevLike() && cfg.CacheBackend != "redis" {
			telemetry.Warn("bootstrap.redis_connect_failed", map[string]any{"error": err})
			return nil, nil
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// buildCacheBackend honours CACHE_BACKEND, otherwise prefers Redis, then
// Postgres, then memory.
func buildCacheBackend(cfg config.Config, sqlDB *sql.DB, rdb *redis.Client) (cache.Backend, error) {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	switch cfg.CacheBackend {
	case "redis":
		if rdb == nil {
			return nil, errors.New("CACHE_BACKEND=redis requires a reachable REDIS_URL")
		}
		return cache.NewRedisBackend(rdb, 2*ttl), nil
	case "postgres":
		if sqlDB == nil {
			return nil, errors.New("CACHE_BACKEND=postgres requires DATABASE_URL")
		}
		return cache.NewPGBackend(sqlDB), nil
	case "memory":
		return cache.NewMemoryBackend(), nil
	}
	switch {
	case rdb != nil:
		return cache.NewRedisBackend(rdb, 2*ttl), nil
	case sqlDB != nil:
		return cache.NewPGBackend(sqlDB), nil
	default:
		return cache.NewMemoryBackend(), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		if cfg.LLM.GeminiAPIKey == "" {
			return placeholderLLM(cfg, "GEMINI_API_KEY empty")
		}
		client, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "none":
		return placeholderLLM(cfg, "provider disabled")
	default:
		if cfg.LLM.APIKey == "" {
			return placeholderLLM(cfg, "LLM_API_KEY empty")
		}
		client, err := openai.NewClient(openai.Options{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// placeholderLLM keeps the service running with generation reported as
// unavailable. Production refuses to start without a model.
func placeholderLLM(cfg config.Config, reason string) (llm.Client, error) {
	if cfg.Env == "production" {
		return nil, fmt.Errorf("%w: %s", llm.ErrNotConfigured, reason)
	}
	telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLM.Provider, "reason": reason})
	return llm.PlaceholderClient{}, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
