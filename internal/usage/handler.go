package usage

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/tier"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// TierResolver resolves a caller's subscription tier.
type TierResolver interface {
	Resolve(ctx context.Context, userKey string) tier.Tier
}

// Handler exposes usage and analytics endpoints.
type Handler struct {
	Recorder *Recorder
	Tiers    TierResolver
}

// NewHandler constructs a Handler.
func NewHandler(recorder *Recorder, tiers TierResolver) *Handler {
	return &Handler{Recorder: recorder, Tiers: tiers}
}

// RegisterRoutes attaches caller-facing usage routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
}

// RegisterAdminRoutes attaches analytics routes to an admin-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage-logs", h.getUsageLogs)
	rg.GET("/analytics/overview", h.getOverview)
	rg.GET("/analytics/errors", h.getErrors)
	rg.GET("/analytics/users", h.getUserAnalytics)
}

func (h *Handler) getUsage(c *gin.Context) {
	userKey := tier.UserKey(middleware.UserIDFromContext(c), middleware.UserEmailFromContext(c))
	t := h.Tiers.Resolve(c.Request.Context(), userKey)
	snap, err := h.Recorder.Snapshot(c.Request.Context(), userKey, t)
	if err != nil {
		respondStoreError(c, err, "failed to fetch usage")
		return
	}
	respond.OK(c, snap)
}

func (h *Handler) getUsageLogs(c *gin.Context) {
	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", gin.H{"field": "limit"})
			return
		}
		limit = min(n, maxLogLimit)
	}
	records, err := h.Recorder.Recent(c.Request.Context(), limit)
	if err != nil {
		respondStoreError(c, err, "failed to fetch usage logs")
		return
	}
	if records == nil {
		records = []Record{}
	}
	respond.OK(c, gin.H{"logs": records, "count": len(records)})
}

func (h *Handler) getOverview(c *gin.Context) {
	overview, err := h.Recorder.Overview(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "failed to fetch analytics")
		return
	}
	respond.OK(c, overview)
}

func (h *Handler) getErrors(c *gin.Context) {
	report, err := h.Recorder.Errors(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "failed to fetch error analytics")
		return
	}
	respond.OK(c, report)
}

func (h *Handler) getUserAnalytics(c *gin.Context) {
	report, err := h.Recorder.Users(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "failed to fetch user analytics")
		return
	}
	respond.OK(c, report)
}

func respondStoreError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
