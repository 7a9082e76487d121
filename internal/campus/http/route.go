package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers campus routes under a church group.
func RegisterRoutes(church *gin.RouterGroup, h *Handler) {
	campuses := church.Group("/campuses")
	{
		campuses.GET("", h.List)
		campuses.POST("", h.Create)
		campuses.GET("/:campusID", h.Get)
		campuses.PATCH("/:campusID", h.Update)
		campuses.DELETE("/:campusID", h.Delete)
	}
}
