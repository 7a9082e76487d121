package http

import (
	"time"

	"github.com/openchurchhq/church-community-backend/internal/invite"
	"github.com/openchurchhq/church-community-backend/internal/pkg/request"
)

type CreateInviteRequest struct {
	CampusID  *string    `json:"campus_id" binding:"omitempty,uuid"`
	ExpiresAt *time.Time `json:"expires_at"`
	MaxUses   int        `json:"max_uses" binding:"omitempty,min=0,max=10000"`
}

type ListInvitesRequest struct {
	request.ListParams
	CampusID string `form:"campus_id" binding:"omitempty,uuid"`
}

type RedeemInviteRequest struct {
	Code string `json:"code" binding:"required,len=8,alphanum"`
}

type InviteResponse struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	ChurchID  string     `json:"church_id"`
	CampusID  *string    `json:"campus_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	MaxUses   int        `json:"max_uses"`
	UseCount  int        `json:"use_count"`
	Revoked   bool       `json:"revoked"`
}

func NewInviteResponse(inv *invite.Invite) InviteResponse {
	return InviteResponse{
		ID:        inv.ID,
		Code:      inv.Code,
		ChurchID:  inv.ChurchID,
		CampusID:  inv.CampusID,
		CreatedAt: inv.CreatedAt,
		ExpiresAt: inv.ExpiresAt,
		MaxUses:   inv.MaxUses,
		UseCount:  inv.UseCount,
		Revoked:   inv.Revoked,
	}
}
