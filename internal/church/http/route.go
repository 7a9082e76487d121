package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers church routes. The logo image itself is public;
// everything else requires authentication.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	churches := g.Group("/churches")

	churches.GET("/:churchID/logo", h.Logo)

	churches.Use(authMiddleware)
	{
		churches.GET("", h.List)
		churches.POST("", h.Create)
		churches.GET("/:churchID", h.Get)
		churches.PATCH("/:churchID", h.Update)
		churches.DELETE("/:churchID", h.Delete)
		churches.PUT("/:churchID/logo", h.UploadLogo)
	}
}
