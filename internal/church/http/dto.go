package http

import (
	"time"

	"github.com/openchurchhq/church-community-backend/internal/church"
	"github.com/openchurchhq/church-community-backend/internal/pkg/request"
)

// ListChurchesRequest defines query parameters for listing churches.
type ListChurchesRequest struct {
	request.ListParams
	Name string `form:"name"`
}

type CreateChurchRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=2000"`
}

type UpdateChurchRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=120"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

type ChurchResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	HasLogo     bool      `json:"has_logo"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

// ChurchTag is a brief representation of a church for embedding in other
// responses.
type ChurchTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewChurchResponse(ch *church.Church) ChurchResponse {
	return ChurchResponse{
		ID:          ch.ID,
		Name:        ch.Name,
		Description: ch.Description,
		HasLogo:     ch.LogoPath != nil,
		CreatedAt:   ch.CreatedAt,
		IsActive:    ch.IsActive,
	}
}
