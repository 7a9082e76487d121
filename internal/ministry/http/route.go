package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers ministry, volunteer and schedule routes under a
// church group.
func RegisterRoutes(church *gin.RouterGroup, h *Handler) {
	ministries := church.Group("/ministries")
	{
		ministries.GET("", h.List)
		ministries.POST("", h.Create)
		ministries.GET("/:ministryID", h.Get)
		ministries.PATCH("/:ministryID", h.Update)
		ministries.DELETE("/:ministryID", h.Delete)

		ministries.GET("/:ministryID/volunteers", h.ListVolunteers)
		ministries.POST("/:ministryID/volunteers", h.AddVolunteer)
		ministries.PATCH("/:ministryID/volunteers/:volunteerID", h.UpdateVolunteer)
		ministries.DELETE("/:ministryID/volunteers/:volunteerID", h.RemoveVolunteer)

		ministries.GET("/:ministryID/schedules", h.ListSchedules)
		ministries.POST("/:ministryID/schedules", h.CreateSchedule)
		ministries.PATCH("/:ministryID/schedules/:scheduleID", h.UpdateSchedule)
		ministries.DELETE("/:ministryID/schedules/:scheduleID", h.DeleteSchedule)
	}
}
