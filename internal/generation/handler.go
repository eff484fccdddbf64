package generation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/usage"
)

const (
	suggestionInput   = "Double-check that your Job Description and Resume contain valid text."
	suggestionLLM     = "Our AI is temporarily overloaded. Please wait 30 seconds and try again."
	suggestionQuota   = "Upgrade your plan for unlimited generations, or come back tomorrow."
	suggestionUpgrade = "Upgrade to a paid plan to unlock resume improvement suggestions."
	suggestionDefault = "Please try again or contact support if the issue persists."
)

// Generator is the pipeline behind POST /generate.
type Generator interface {
	Generate(ctx context.Context, caller Caller, req Request) (Response, error)
}

// Improver is the pipeline behind POST /improve-resume.
type Improver interface {
	Improve(ctx context.Context, caller Caller, req Request) (ImproveResponse, error)
}

// CacheCleaner physically deletes stale cache entries.
type CacheCleaner interface {
	Cleanup(ctx context.Context, now time.Time) (int, error)
}

// Handler wires HTTP handlers to the generation service.
type Handler struct {
	Svc      Generator
	Improver Improver
	Cache    CacheCleaner
}

// NewHandler constructs a Handler. The improve route is served when svc also implements Improver.
func NewHandler(svc Generator, cleaner CacheCleaner) *Handler {
	h := &Handler{Svc: svc, Cache: cleaner}
	if imp, ok := svc.(Improver); ok {
		h.Improver = imp
	}
	return h
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.generate)
	if h.Improver != nil {
		rg.POST("/improve-resume", h.improve)
	}
}

// RegisterAdminRoutes attaches cache maintenance routes to an admin-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/cache/cleanup", h.cleanupCache)
}

func (h *Handler) generate(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, respond.ErrorBody{
			Code:       "validation_error",
			Message:    "request body must be JSON with job_description and resume",
			Suggestion: suggestionInput,
		})
		return
	}

	caller := Caller{
		UserID: middleware.UserIDFromContext(c),
		Email:  middleware.UserEmailFromContext(c),
	}
	resp, err := h.Svc.Generate(c.Request.Context(), caller, req)
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			c.Set("generationStage", string(StageFailed)+":"+string(se.Stage))
		}
		respondGenerateError(c, err)
		return
	}

	c.Set("generationStage", string(StageDone))
	c.Set("cached", resp.Cached)
	respond.OK(c, resp)
}

func (h *Handler) improve(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, respond.ErrorBody{
			Code:       "validation_error",
			Message:    "request body must be JSON with job_description and resume",
			Suggestion: suggestionInput,
		})
		return
	}

	caller := Caller{
		UserID: middleware.UserIDFromContext(c),
		Email:  middleware.UserEmailFromContext(c),
	}
	resp, err := h.Improver.Improve(c.Request.Context(), caller, req)
	if err != nil {
		respondGenerateError(c, err)
		return
	}
	respond.OK(c, resp)
}

func respondGenerateError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Fail(c, http.StatusBadRequest, respond.ErrorBody{
			Code:       "validation_error",
			Message:    verr.UserMessage(),
			Details:    gin.H{"field": verr.Field, "issue": verr.Issue},
			Suggestion: suggestionInput,
		})
	case errors.Is(err, ErrProRequired):
		respond.Fail(c, http.StatusForbidden, respond.ErrorBody{
			Code:       "pro_required",
			Message:    "This feature is available on paid plans.",
			Suggestion: suggestionUpgrade,
		})
	case errors.Is(err, usage.ErrLimitReached):
		respond.Fail(c, http.StatusTooManyRequests, respond.ErrorBody{
			Code:       "quota_exceeded",
			Message:    "You've used all of today's free generations.",
			Details:    []map[string]string{{"field": "usage", "issue": "limit_reached"}},
			Suggestion: suggestionQuota,
		})
	case errors.Is(err, ErrTimeout):
		respond.Fail(c, http.StatusGatewayTimeout, respond.ErrorBody{
			Code:       "timeout",
			Message:    "The AI took too long to respond.",
			Suggestion: suggestionLLM,
		})
	case errors.Is(err, ErrServiceUnavailable):
		respond.Fail(c, http.StatusServiceUnavailable, respond.ErrorBody{
			Code:       "service_unavailable",
			Message:    "Our AI service is experiencing high demand. Please try again in a moment.",
			Suggestion: suggestionLLM,
		})
	case errors.Is(err, ErrEmptyResult):
		respond.Fail(c, http.StatusBadGateway, respond.ErrorBody{
			Code:       "empty_result",
			Message:    "The AI response did not contain any usable content.",
			Suggestion: suggestionDefault,
		})
	case errors.Is(err, context.Canceled):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Fail(c, http.StatusInternalServerError, respond.ErrorBody{
			Code:       "internal_error",
			Message:    "failed to generate questions",
			Suggestion: suggestionDefault,
		})
	}
}

func (h *Handler) cleanupCache(c *gin.Context) {
	if h.Cache == nil {
		respond.Error(c, http.StatusServiceUnavailable, "service_unavailable", "cache not configured", nil)
		return
	}
	deleted, err := h.Cache.Cleanup(c.Request.Context(), time.Now())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "cache cleanup failed", nil)
		return
	}
	metrics.AddCacheEntriesDeleted(deleted)
	telemetry.Info("cache.cleanup", map[string]any{"deleted": deleted, "source": "admin"})
	respond.OK(c, gin.H{"deleted": deleted})
}
