package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/shared/server/middleware"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/tier"
	"interview-backend/internal/usage"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup, tiers usage.TierResolver) {
	rg.GET("/me", func(c *gin.Context) {
		meHandler(c, tiers)
	})
}

func meHandler(c *gin.Context, tiers usage.TierResolver) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	email := middleware.UserEmailFromContext(c)
	t := tier.Free
	if tiers != nil {
		t = tiers.Resolve(c.Request.Context(), tier.UserKey(userID, email))
	}

	response := gin.H{
		"userId":  userID,
		"tier":    t.String(),
		"pro":     t.Paid(),
		"isAdmin": middleware.IsAdminFromContext(c),
		"isGuest": c.GetBool("isGuest"),
	}
	if email != "" {
		response["email"] = email
	}

	respond.JSON(c, http.StatusOK, response)
}
