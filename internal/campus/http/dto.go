package http

import (
	"time"

	"github.com/openchurchhq/church-community-backend/internal/campus"
)

type CreateCampusRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=120"`
	Address string `json:"address" binding:"max=300"`
}

type UpdateCampusRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=120"`
	Address *string `json:"address" binding:"omitempty,max=300"`
}

type CampusResponse struct {
	ID        string    `json:"id"`
	ChurchID  string    `json:"church_id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// CampusTag is a brief representation of a campus.
type CampusTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewCampusResponse(cp *campus.Campus) CampusResponse {
	return CampusResponse{
		ID:        cp.ID,
		ChurchID:  cp.ChurchID,
		Name:      cp.Name,
		Address:   cp.Address,
		CreatedAt: cp.CreatedAt,
	}
}
