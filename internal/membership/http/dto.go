package http

import (
	"time"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/pkg/request"
)

// ListMembersRequest defines query parameters for listing members.
type ListMembersRequest struct {
	request.ListParams
	CampusID string `form:"campus_id" binding:"omitempty,uuid"`
	Role     string `form:"role" binding:"omitempty,oneof=owner overseer moderator member"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner overseer moderator member"`
}

type AssignCampusRequest struct {
	// A null campus_id clears the assignment, making the member church-wide.
	CampusID *string `json:"campus_id" binding:"omitempty,uuid"`
}

type MemberResponse struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	CampusID   *string   `json:"campus_id"`
	CampusName *string   `json:"campus_name"`
	JoinedAt   time.Time `json:"joined_at"`
}

func NewMemberResponse(m *membership.Membership) MemberResponse {
	return MemberResponse{
		UserID:     m.UserID,
		Name:       m.UserName,
		Role:       string(m.Role),
		CampusID:   m.CampusID,
		CampusName: m.CampusName,
		JoinedAt:   m.JoinedAt,
	}
}

type DepartureResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Reason     string    `json:"reason"`
	RecordedAt time.Time `json:"recorded_at"`
}

func NewDepartureResponse(d *membership.Departure) DepartureResponse {
	return DepartureResponse{
		ID:         d.ID,
		UserID:     d.UserID,
		Name:       d.UserName,
		Role:       string(d.Role),
		Reason:     string(d.Reason),
		RecordedAt: d.RecordedAt,
	}
}
