package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/invite"
	memberHttp "github.com/openchurchhq/church-community-backend/internal/membership/http"
	"github.com/openchurchhq/church-community-backend/internal/pkg/response"
)

type Handler struct {
	service invite.Service
}

func NewHandler(service invite.Service) *Handler {
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

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	inv, err := h.service.Create(c.Request.Context(), ids[0], auth.GetUserID(c), invite.CreateRequest{
		CampusID:  req.CampusID,
		ExpiresAt: req.ExpiresAt,
		MaxUses:   req.MaxUses,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewInviteResponse(inv))
}

func (h *Handler) List(c *gin.Context) {
	ids, ok := params(c, "churchID")
	if !ok {
		return
	}

	var req ListInvitesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()

	invites, total, err := h.service.List(c.Request.Context(), ids[0], auth.GetUserID(c), invite.Filter{
		CampusID: req.CampusID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]InviteResponse, len(invites))
	for i, inv := range invites {
		items[i] = NewInviteResponse(inv)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Revoke(c *gin.Context) {
	ids, ok := params(c, "churchID", "inviteID")
	if !ok {
		return
	}

	if err := h.service.Revoke(c.Request.Context(), ids[0], ids[1], auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Preview returns invite details so a client can show the destination
// church before the user commits to joining.
func (h *Handler) Preview(c *gin.Context) {
	code := c.Param("code")
	if len(code) != 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite code"})
		return
	}

	inv, err := h.service.GetByCode(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewInviteResponse(inv))
}

// Redeem joins the authenticated user to the invite's church as a member.
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	m, err := h.service.Redeem(c.Request.Context(), req.Code, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, memberHttp.NewMemberResponse(m))
}
