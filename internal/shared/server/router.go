package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/generation"
	"interview-backend/internal/services/health"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/tier"
	"interview-backend/internal/usage"
)

const (
	rateLimitGroupGenerate = "GENERATE"
	rateLimitGroupImprove  = "IMPROVE"
)

// RouterDeps carries handlers and shared collaborators for NewRouter.
type RouterDeps struct {
	Config            config.Config
	Tokens            middleware.TokenVerifier
	Tiers             usage.TierResolver
	MetricSink        middleware.MetricSink
	RateLimiter       *middleware.RateLimiter
	Health            *health.Service
	GenerationHandler *generation.Handler
	UsageHandler      *usage.Handler
	TierHandler       *tier.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	if deps.MetricSink != nil {
		r.Use(middleware.APIMetrics(deps.MetricSink))
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		ok, checks := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
	})

	generateRate := cfg.GenerateRatePerMinute
	if generateRate <= 0 {
		generateRate = 10
	}
	authed := api.Group("",
		middleware.Auth(deps.Tokens, cfg.IsDevLike()),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateLimitGroupGenerate: middleware.PerMinute(generateRate),
				rateLimitGroupImprove:  middleware.PerMinute(generateRate),
			},
			GroupFor: rateLimitGroupFor,
			Limiter:  deps.RateLimiter,
		}),
	)
	registerMeRoutes(authed, deps.Tiers)
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(authed)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(authed)
	}

	admin := authed.Group("/admin", middleware.AdminOnly())
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterAdminRoutes(admin)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterAdminRoutes(admin)
	}
	if deps.TierHandler != nil {
		deps.TierHandler.RegisterAdminRoutes(admin)
	}

	return r
}

func rateLimitGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch {
	case strings.HasSuffix(c.Request.URL.Path, "/generate"):
		return rateLimitGroupGenerate
	case strings.HasSuffix(c.Request.URL.Path, "/improve-resume"):
		return rateLimitGroupImprove
	default:
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
