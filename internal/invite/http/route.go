package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers invite management routes under a church group.
func RegisterRoutes(church *gin.RouterGroup, h *Handler) {
	invites := church.Group("/invites")
	{
		invites.GET("", h.List)
		invites.POST("", h.Create)
		invites.DELETE("/:inviteID", h.Revoke)
	}
}

// RegisterRedeemRoutes registers the code-facing endpoints outside the
// church hierarchy, since redeemers are not members yet.
func RegisterRedeemRoutes(v1 *gin.RouterGroup, h *Handler) {
	invites := v1.Group("/invites")
	{
		invites.GET("/:code", h.Preview)
		invites.POST("/redeem", h.Redeem)
	}
}
