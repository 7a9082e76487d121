package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers join request routes under a church group.
func RegisterRoutes(church *gin.RouterGroup, h *Handler) {
	requests := church.Group("/join-requests")
	{
		requests.GET("", h.List)
		requests.POST("", h.Create)
		requests.POST("/:requestID/approve", h.Approve)
		requests.POST("/:requestID/reject", h.Reject)
	}
}

// RegisterUserRoutes registers the requester-facing endpoints outside the
// church hierarchy.
func RegisterUserRoutes(v1 *gin.RouterGroup, h *Handler) {
	requests := v1.Group("/join-requests")
	{
		requests.GET("/mine", h.ListMine)
		requests.DELETE("/:requestID", h.Cancel)
	}
}
