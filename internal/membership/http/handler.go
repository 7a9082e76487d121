package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
	"github.com/openchurchhq/church-community-backend/internal/pkg/response"
)

type Handler struct {
	service membership.Service
}

func NewHandler(service membership.Service) *Handler {
	return &Handler{service: service}
}

// pathIDs validates the church and (optionally) target user path params.
func pathIDs(c *gin.Context, params ...string) ([]string, bool) {
	out := make([]string, 0, len(params))
	for _, p := range params {
		v := c.Param(p)
		if _, err := uuid.Parse(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p})
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func (h *Handler) List(c *gin.Context) {
	ids, ok := pathIDs(c, "churchID")
	if !ok {
		return
	}

	var req ListMembersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()

	filter := membership.Filter{
		CampusID: req.CampusID,
		Role:     req.Role,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	members, total, err := h.service.List(c.Request.Context(), ids[0], auth.GetUserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MemberResponse, len(members))
	for i, m := range members {
		items[i] = NewMemberResponse(m)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	ids, ok := pathIDs(c, "churchID", "userID")
	if !ok {
		return
	}

	// The caller must themselves be a member to look others up.
	if _, err := h.service.GetForUser(c.Request.Context(), ids[0], auth.GetUserID(c)); err != nil {
		response.Error(c, membership.ErrActorNotMember)
		return
	}

	m, err := h.service.GetForUser(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMemberResponse(m))
}

func (h *Handler) ChangeRole(c *gin.Context) {
	ids, ok := pathIDs(c, "churchID", "userID")
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	role, err := permission.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.ChangeRole(c.Request.Context(), ids[0], auth.GetUserID(c), ids[1], role)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMemberResponse(m))
}

func (h *Handler) AssignCampus(c *gin.Context) {
	ids, ok := pathIDs(c, "churchID", "userID")
	if !ok {
		return
	}

	var req AssignCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	m, err := h.service.AssignCampus(c.Request.Context(), ids[0], auth.GetUserID(c), ids[1], req.CampusID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMemberResponse(m))
}

func (h *Handler) Remove(c *gin.Context) {
	ids, ok := pathIDs(c, "churchID", "userID")
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), ids[0], auth.GetUserID(c), ids[1]); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Leave(c *gin.Context) {
	ids, ok := pathIDs(c, "churchID")
	if !ok {
		return
	}

	if err := h.service.Leave(c.Request.Context(), ids[0], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListDepartures(c *gin.Context) {
	ids, ok := pathIDs(c, "churchID")
	if !ok {
		return
	}

	var req ListMembersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()

	filter := membership.Filter{Page: req.Page, PageSize: req.PageSize}
	departures, total, err := h.service.ListDepartures(c.Request.Context(), ids[0], auth.GetUserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]DepartureResponse, len(departures))
	for i, d := range departures {
		items[i] = NewDepartureResponse(d)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}
