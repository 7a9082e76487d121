package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/joinrequest"
	"github.com/openchurchhq/church-community-backend/internal/pkg/response"
)

type Handler struct {
	service joinrequest.Service
}

func NewHandler(service joinrequest.Service) *Handler {
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

func (h *Handler) Create(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req CreateJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	jr, err := h.service.Create(c.Request.Context(), ids[0], auth.GetUserID(c), joinrequest.CreateRequest{
		CampusID: req.CampusID,
		Message:  req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewJoinRequestResponse(jr))
}

func (h *Handler) List(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req ListJoinRequestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()

	requests, total, err := h.service.ListForChurch(c.Request.Context(), ids[0], auth.GetUserID(c), joinrequest.Filter{
		Status:   joinrequest.Status(req.Status),
		CampusID: req.CampusID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]JoinRequestResponse, len(requests))
	for i, jr := range requests {
		items[i] = NewJoinRequestResponse(jr)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) ListMine(c *gin.Context) {
	requests, err := h.service.ListMine(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]JoinRequestResponse, len(requests))
	for i, jr := range requests {
		items[i] = NewJoinRequestResponse(jr)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Approve(c *gin.Context) {
	ids, ok := params(c, "churchID", "requestID")
	if !ok {
		return
	}

	jr, err := h.service.Approve(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewJoinRequestResponse(jr))
}

func (h *Handler) Reject(c *gin.Context) {
	ids, ok := params(c, "churchID", "requestID")
	if !ok {
		return
	}

	jr, err := h.service.Reject(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewJoinRequestResponse(jr))
}

func (h *Handler) Cancel(c *gin.Context) {
	ids, ok := params(c, "requestID")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), ids[0], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
