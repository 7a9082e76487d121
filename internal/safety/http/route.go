package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers safety team, schedule and incident routes under
// a church group.
func RegisterRoutes(church *gin.RouterGroup, h *Handler) {
	safety := church.Group("/safety")
	{
		safety.GET("/members", h.ListMembers)
		safety.POST("/members", h.AddMember)
		safety.PATCH("/members/:memberID", h.UpdateMember)
		safety.DELETE("/members/:memberID", h.RemoveMember)

		safety.GET("/schedules", h.ListSchedules)
		safety.POST("/schedules", h.CreateSchedule)
		safety.PATCH("/schedules/:scheduleID", h.UpdateSchedule)
		safety.DELETE("/schedules/:scheduleID", h.DeleteSchedule)

		safety.GET("/incidents", h.ListIncidents)
		safety.POST("/incidents", h.ReportIncident)
		safety.GET("/incidents/:incidentID", h.GetIncident)
		safety.POST("/incidents/:incidentID/resolve", h.ResolveIncident)
	}
}
