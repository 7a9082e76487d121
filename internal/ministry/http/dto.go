package http

import (
	"time"

	"github.com/openchurchhq/church-community-backend/internal/ministry"
	"github.com/openchurchhq/church-community-backend/internal/pkg/request"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

type CreateMinistryRequest struct {
	CampusID    *string `json:"campus_id" binding:"omitempty,uuid"`
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type UpdateMinistryRequest struct {
	CampusID    *string `json:"campus_id" binding:"omitempty,uuid"`
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type ListMinistriesRequest struct {
	request.ListParams
	CampusID string `form:"campus_id" binding:"omitempty,uuid"`
	Name     string `form:"name" binding:"omitempty,max=100"`
}

type MinistryResponse struct {
	ID          string    `json:"id"`
	ChurchID    string    `json:"church_id"`
	CampusID    *string   `json:"campus_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewMinistryResponse(m *ministry.Ministry) MinistryResponse {
	return MinistryResponse{
		ID:          m.ID,
		ChurchID:    m.ChurchID,
		CampusID:    m.CampusID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

type AddVolunteerRequest struct {
	UserID *string `json:"user_id" binding:"omitempty,uuid"`
	Name   string  `json:"name" binding:"required,max=100"`
}

type UpdateVolunteerRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

type VolunteerResponse struct {
	ID         string    `json:"id"`
	MinistryID string    `json:"ministry_id"`
	UserID     *string   `json:"user_id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewVolunteerResponse(v *ministry.Volunteer) VolunteerResponse {
	return VolunteerResponse{
		ID:         v.ID,
		MinistryID: v.MinistryID,
		UserID:     v.UserID,
		Name:       v.Name,
		IsActive:   v.IsActive,
		CreatedAt:  v.CreatedAt,
	}
}

type CreateScheduleRequest struct {
	VolunteerID string `json:"volunteer_id" binding:"required,uuid"`
	Date        string `json:"date" binding:"required"`
	Start       string `json:"start" binding:"required"`
	End         string `json:"end" binding:"required"`
	Notes       string `json:"notes" binding:"max=500"`
}

type UpdateScheduleRequest struct {
	VolunteerID *string `json:"volunteer_id" binding:"omitempty,uuid"`
	Date        *string `json:"date"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Status      *string `json:"status" binding:"omitempty,oneof=scheduled completed cancelled no_show"`
	Notes       *string `json:"notes" binding:"omitempty,max=500"`
}

type ListSchedulesRequest struct {
	request.ListParams
	VolunteerID string `form:"volunteer_id" binding:"omitempty,uuid"`
	From        string `form:"from"`
	To          string `form:"to"`
}

type ScheduleResponse struct {
	ID          string    `json:"id"`
	VolunteerID string    `json:"volunteer_id"`
	Date        string    `json:"date"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewScheduleResponse(s *ministry.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:          s.ID,
		VolunteerID: s.VolunteerID,
		Date:        s.Date.String(),
		Start:       timeslot.FormatClock(s.Start),
		End:         timeslot.FormatClock(s.End),
		Status:      string(s.Status),
		Notes:       s.Notes,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
	}
}
