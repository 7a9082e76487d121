package http

import (
	"time"

	"github.com/openchurchhq/church-community-backend/internal/joinrequest"
	"github.com/openchurchhq/church-community-backend/internal/pkg/request"
)

type CreateJoinRequestRequest struct {
	CampusID *string `json:"campus_id" binding:"omitempty,uuid"`
	Message  string  `json:"message" binding:"max=500"`
}

type ListJoinRequestsRequest struct {
	request.ListParams
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	CampusID string `form:"campus_id" binding:"omitempty,uuid"`
}

type JoinRequestResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name"`
	ChurchID   string     `json:"church_id"`
	CampusID   *string    `json:"campus_id"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedBy *string    `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

func NewJoinRequestResponse(jr *joinrequest.JoinRequest) JoinRequestResponse {
	return JoinRequestResponse{
		ID:         jr.ID,
		UserID:     jr.UserID,
		UserName:   jr.UserName,
		ChurchID:   jr.ChurchID,
		CampusID:   jr.CampusID,
		Message:    jr.Message,
		Status:     string(jr.Status),
		CreatedAt:  jr.CreatedAt,
		ReviewedBy: jr.ReviewedBy,
		ReviewedAt: jr.ReviewedAt,
	}
}
