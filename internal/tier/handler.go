package tier

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/respond"
)

// SubscriberLister lists paid subscriptions.
type SubscriberLister interface {
	Subscribers(ctx context.Context) ([]Subscription, error)
}

// Handler exposes subscription admin routes.
type Handler struct {
	Subs SubscriberLister
}

// NewHandler constructs a Handler.
func NewHandler(subs SubscriberLister) *Handler {
	return &Handler{Subs: subs}
}

// RegisterAdminRoutes attaches subscription routes to an admin-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/pro-users", h.listProUsers)
}

func (h *Handler) listProUsers(c *gin.Context) {
	subs, err := h.Subs.Subscribers(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch pro users", nil)
		return
	}
	if subs == nil {
		subs = []Subscription{}
	}
	respond.OK(c, gin.H{"users": subs, "count": len(subs)})
}
