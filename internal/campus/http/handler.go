package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/campus"
	"github.com/openchurchhq/church-community-backend/internal/pkg/response"
)

type Handler struct {
	service campus.Service
}

func NewHandler(service campus.Service) *Handler {
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

	var req CreateCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	cp, err := h.service.Create(c.Request.Context(), ids[0], auth.GetUserID(c), req.Name, req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCampusResponse(cp))
}

func (h *Handler) List(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	campuses, err := h.service.ListByChurch(c.Request.Context(), ids[0], auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CampusResponse, len(campuses))
	for i, cp := range campuses {
		items[i] = NewCampusResponse(cp)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Get(c *gin.Context) {
	ids, ok := params(c, "churchID", "campusID")
	if !ok {
		return
	}

	cp, err := h.service.GetByID(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCampusResponse(cp))
}

func (h *Handler) Update(c *gin.Context) {
	ids, ok := params(c, "churchID", "campusID")
	if !ok {
		return
	}

	var req UpdateCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	cp, err := h.service.Update(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c), campus.UpdateRequest{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCampusResponse(cp))
}

func (h *Handler) Delete(c *gin.Context) {
	ids, ok := params(c, "churchID", "campusID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
