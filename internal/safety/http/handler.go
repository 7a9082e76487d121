package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/pkg/response"
	"github.com/openchurchhq/church-community-backend/internal/safety"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

type Handler struct {
	service safety.Service
}

func NewHandler(service safety.Service) *Handler {
	return &Handler{service: service}
}

func params(c *gin.Context, names ...string) ([]string, bool) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		v := c.Param(n)
		if _, err := uuid.Parse(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + n})
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *Handler) AddMember(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	m, err := h.service.AddMember(c.Request.Context(), ids[0], auth.GetUserID(c), safety.MemberRequest{
		CampusID: req.CampusID,
		UserID:   req.UserID,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewMemberResponse(m))
}

func (h *Handler) ListMembers(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req ListMembersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), ids[0], auth.GetUserID(c), safety.MemberFilter{
		CampusID:   req.CampusID,
		ActiveOnly: req.ActiveOnly,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MemberResponse, len(members))
	for i, m := range members {
		items[i] = NewMemberResponse(m)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	ids, ok := params(c, "churchID", "memberID")
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	m, err := h.service.UpdateMember(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c), safety.UpdateMemberRequest{
		CampusID: req.CampusID,
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMemberResponse(m))
}

func (h *Handler) RemoveMember(c *gin.Context) {
	ids, ok := params(c, "churchID", "memberID")
	if !ok {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := timeslot.ParseDate(req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := timeslot.ParseClock(req.Start)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	end, err := timeslot.ParseClock(req.End)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	sched, err := h.service.CreateSchedule(c.Request.Context(), ids[0], auth.GetUserID(c), safety.CreateScheduleRequest{
		MemberID: req.MemberID,
		Date:     date,
		Start:    start,
		End:      end,
		Notes:    req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewScheduleResponse(sched))
}

func (h *Handler) ListSchedules(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req ListSchedulesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	filter := safety.ScheduleFilter{
		MemberID: req.MemberID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.From != "" {
		from, err := timeslot.ParseDate(req.From)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		filter.From = from
	}
	if req.To != "" {
		to, err := timeslot.ParseDate(req.To)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		filter.To = to
	}

	schedules, total, err := h.service.ListSchedules(c.Request.Context(), ids[0], auth.GetUserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ScheduleResponse, len(schedules))
	for i, s := range schedules {
		items[i] = NewScheduleResponse(s)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	ids, ok := params(c, "churchID", "scheduleID")
	if !ok {
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	update := safety.UpdateScheduleRequest{
		MemberID: req.MemberID,
		Notes:    req.Notes,
	}
	if req.Date != nil {
		date, err := timeslot.ParseDate(*req.Date)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		update.Date = &date
	}
	if req.Start != nil {
		start, err := timeslot.ParseClock(*req.Start)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		update.Start = &start
	}
	if req.End != nil {
		end, err := timeslot.ParseClock(*req.End)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		update.End = &end
	}
	if req.Status != nil {
		status := timeslot.Status(*req.Status)
		update.Status = &status
	}

	sched, err := h.service.UpdateSchedule(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewScheduleResponse(sched))
}

func (h *Handler) DeleteSchedule(c *gin.Context) {
	ids, ok := params(c, "churchID", "scheduleID")
	if !ok {
		return
	}

	if err := h.service.DeleteSchedule(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ReportIncident(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req ReportIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	i, err := h.service.ReportIncident(c.Request.Context(), ids[0], auth.GetUserID(c), safety.IncidentRequest{
		CampusID:    req.CampusID,
		OccurredAt:  occurredAt,
		Severity:    safety.Severity(req.Severity),
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewIncidentResponse(i))
}

func (h *Handler) GetIncident(c *gin.Context) {
	ids, ok := params(c, "churchID", "incidentID")
	if !ok {
		return
	}

	i, err := h.service.GetIncident(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewIncidentResponse(i))
}

func (h *Handler) ListIncidents(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req ListIncidentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	incidents, total, err := h.service.ListIncidents(c.Request.Context(), ids[0], auth.GetUserID(c), safety.IncidentFilter{
		CampusID: req.CampusID,
		Status:   safety.IncidentStatus(req.Status),
		Severity: safety.Severity(req.Severity),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]IncidentResponse, len(incidents))
	for i, inc := range incidents {
		items[i] = NewIncidentResponse(inc)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) ResolveIncident(c *gin.Context) {
	ids, ok := params(c, "churchID", "incidentID")
	if !ok {
		return
	}

	i, err := h.service.ResolveIncident(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewIncidentResponse(i))
}
