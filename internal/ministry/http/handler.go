package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/ministry"
	"github.com/openchurchhq/church-community-backend/internal/pkg/response"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

type Handler struct {
	service ministry.Service
}

func NewHandler(service ministry.Service) *Handler {
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

func (h *Handler) Create(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req CreateMinistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	m, err := h.service.CreateMinistry(c.Request.Context(), ids[0], auth.GetUserID(c), ministry.CreateMinistryRequest{
		CampusID:    req.CampusID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewMinistryResponse(m))
}

func (h *Handler) Get(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID")
	if !ok {
		return
	}

	m, err := h.service.GetMinistry(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMinistryResponse(m))
}

func (h *Handler) List(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req ListMinistriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	ministries, total, err := h.service.ListMinistries(c.Request.Context(), ids[0], auth.GetUserID(c), ministry.Filter{
		CampusID: req.CampusID,
		Name:     req.Name,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MinistryResponse, len(ministries))
	for i, m := range ministries {
		items[i] = NewMinistryResponse(m)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID")
	if !ok {
		return
	}

	var req UpdateMinistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	m, err := h.service.UpdateMinistry(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c), ministry.UpdateMinistryRequest{
		CampusID:    req.CampusID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMinistryResponse(m))
}

func (h *Handler) Delete(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID")
	if !ok {
		return
	}

	if err := h.service.DeleteMinistry(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddVolunteer(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID")
	if !ok {
		return
	}

	var req AddVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	v, err := h.service.AddVolunteer(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c), ministry.VolunteerRequest{
		UserID: req.UserID,
		Name:   req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewVolunteerResponse(v))
}

func (h *Handler) ListVolunteers(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID")
	if !ok {
		return
	}

	volunteers, err := h.service.ListVolunteers(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]VolunteerResponse, len(volunteers))
	for i, v := range volunteers {
		items[i] = NewVolunteerResponse(v)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateVolunteer(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID", "volunteerID")
	if !ok {
		return
	}

	var req UpdateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	v, err := h.service.UpdateVolunteer(c.Request.Context(), ids[0], ids[1], ids[2], auth.GetUserID(c), ministry.UpdateVolunteerRequest{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVolunteerResponse(v))
}

func (h *Handler) RemoveVolunteer(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID", "volunteerID")
	if !ok {
		return
	}

	if err := h.service.RemoveVolunteer(c.Request.Context(), ids[0], ids[1], ids[2], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID")
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

	sched, err := h.service.CreateSchedule(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c), ministry.CreateScheduleRequest{
		VolunteerID: req.VolunteerID,
		Date:        date,
		Start:       start,
		End:         end,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewScheduleResponse(sched))
}

func (h *Handler) ListSchedules(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID")
	if !ok {
		return
	}

	var req ListSchedulesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	filter := ministry.ScheduleFilter{
		VolunteerID: req.VolunteerID,
		Page:        req.Page,
		PageSize:    req.PageSize,
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

	schedules, total, err := h.service.ListSchedules(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c), filter)
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
	ids, ok := params(c, "churchID", "ministryID", "scheduleID")
	if !ok {
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	update := ministry.UpdateScheduleRequest{
		VolunteerID: req.VolunteerID,
		Notes:       req.Notes,
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

	sched, err := h.service.UpdateSchedule(c.Request.Context(), ids[0], ids[1], ids[2], auth.GetUserID(c), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewScheduleResponse(sched))
}

func (h *Handler) DeleteSchedule(c *gin.Context) {
	ids, ok := params(c, "churchID", "ministryID", "scheduleID")
	if !ok {
		return
	}

	if err := h.service.DeleteSchedule(c.Request.Context(), ids[0], ids[1], ids[2], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
