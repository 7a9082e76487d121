package http

import (
	"time"

	"github.com/openchurchhq/church-community-backend/internal/pkg/request"
	"github.com/openchurchhq/church-community-backend/internal/safety"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

type AddMemberRequest struct {
	CampusID *string `json:"campus_id" binding:"omitempty,uuid"`
	UserID   *string `json:"user_id" binding:"omitempty,uuid"`
	Name     string  `json:"name" binding:"required,max=100"`
}

type UpdateMemberRequest struct {
	CampusID *string `json:"campus_id" binding:"omitempty,uuid"`
	Name     *string `json:"name" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

type ListMembersRequest struct {
	CampusID   string `form:"campus_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

type MemberResponse struct {
	ID        string    `json:"id"`
	ChurchID  string    `json:"church_id"`
	CampusID  *string   `json:"campus_id"`
	UserID    *string   `json:"user_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMemberResponse(m *safety.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		ChurchID:  m.ChurchID,
		CampusID:  m.CampusID,
		UserID:    m.UserID,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

type CreateScheduleRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
	Date     string `json:"date" binding:"required"`
	Start    string `json:"start" binding:"required"`
	End      string `json:"end" binding:"required"`
	Notes    string `json:"notes" binding:"max=500"`
}

type UpdateScheduleRequest struct {
	MemberID *string `json:"member_id" binding:"omitempty,uuid"`
	Date     *string `json:"date"`
	Start    *string `json:"start"`
	End      *string `json:"end"`
	Status   *string `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Notes    *string `json:"notes" binding:"omitempty,max=500"`
}

type ListSchedulesRequest struct {
	request.ListParams
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	From     string `form:"from"`
	To       string `form:"to"`
}

type ScheduleResponse struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Date      string    `json:"date"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func NewScheduleResponse(s *safety.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		MemberID:  s.MemberID,
		Date:      s.Date.String(),
		Start:     timeslot.FormatClock(s.Start),
		End:       timeslot.FormatClock(s.End),
		Status:    string(s.Status),
		Notes:     s.Notes,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

type ReportIncidentRequest struct {
	CampusID    *string    `json:"campus_id" binding:"omitempty,uuid"`
	OccurredAt  *time.Time `json:"occurred_at"`
	Severity    string     `json:"severity" binding:"required,oneof=low medium high"`
	Description string     `json:"description" binding:"required,max=2000"`
}

type ListIncidentsRequest struct {
	request.ListParams
	CampusID string `form:"campus_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=open resolved"`
	Severity string `form:"severity" binding:"omitempty,oneof=low medium high"`
}

type IncidentResponse struct {
	ID          string     `json:"id"`
	ChurchID    string     `json:"church_id"`
	CampusID    *string    `json:"campus_id"`
	ReportedBy  string     `json:"reported_by"`
	OccurredAt  time.Time  `json:"occurred_at"`
	Severity    string     `json:"severity"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ResolvedBy  *string    `json:"resolved_by"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewIncidentResponse(i *safety.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          i.ID,
		ChurchID:    i.ChurchID,
		CampusID:    i.CampusID,
		ReportedBy:  i.ReportedBy,
		OccurredAt:  i.OccurredAt,
		Severity:    string(i.Severity),
		Description: i.Description,
		Status:      string(i.Status),
		ResolvedBy:  i.ResolvedBy,
		ResolvedAt:  i.ResolvedAt,
		CreatedAt:   i.CreatedAt,
	}
}
