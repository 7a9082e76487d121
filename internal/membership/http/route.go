package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers member management routes under a church group.
// The group is expected to carry the :churchID param and auth middleware.
func RegisterRoutes(church *gin.RouterGroup, h *Handler) {
	members := church.Group("/members")
	{
		members.GET("", h.List)
		members.DELETE("/me", h.Leave)
		members.GET("/:userID", h.Get)
		members.PUT("/:userID/role", h.ChangeRole)
		members.PUT("/:userID/campus", h.AssignCampus)
		members.DELETE("/:userID", h.Remove)
	}

	church.GET("/departures", h.ListDepartures)
}
