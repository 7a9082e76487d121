package church

import (
	"context"
	"strings"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
)

// UpdateRequest defines the fields that can be updated.
type UpdateRequest struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Service defines business logic for churches.
type Service interface {
	// Create registers a new church; the creator becomes its owner.
	Create(ctx context.Context, creatorUserID, name, description string) (*Church, error)
	GetByID(ctx context.Context, id string) (*Church, error)
	List(ctx context.Context, filter Filter) ([]*Church, int, error)
	Update(ctx context.Context, id, actorUserID string, req UpdateRequest) (*Church, error)
	Delete(ctx context.Context, id, actorUserID string) error
	SetLogo(ctx context.Context, id, actorUserID, logoPath string) (*Church, error)
}

type service struct {
	repo        Repository
	memberships membership.Service
}

// NewService creates a new church service.
func NewService(repo Repository, memberships membership.Service) Service {
	return &service{repo: repo, memberships: memberships}
}

func (s *service) Create(ctx context.Context, creatorUserID, name, description string) (*Church, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var descPtr *string
	if d := strings.TrimSpace(description); d != "" {
		descPtr = &d
	}

	ch := &Church{
		Name:        name,
		Description: descPtr,
		IsActive:    true,
	}
	if err := s.repo.CreateWithOwner(ctx, ch, creatorUserID); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Church, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Church, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id, actorUserID string, req UpdateRequest) (*Church, error) {
	if _, err := s.memberships.Authorize(ctx, id, actorUserID, permission.CapUpdateChurch, ""); err != nil {
		return nil, err
	}

	ch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		newName := strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, ErrNameRequired
		}
		ch.Name = newName
	}
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			ch.Description = &d
		} else {
			ch.Description = nil
		}
	}
	if req.IsActive != nil {
		ch.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *service) Delete(ctx context.Context, id, actorUserID string) error {
	if _, err := s.memberships.Authorize(ctx, id, actorUserID, permission.CapDeleteChurch, ""); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SetLogo(ctx context.Context, id, actorUserID, logoPath string) (*Church, error) {
	if _, err := s.memberships.Authorize(ctx, id, actorUserID, permission.CapUpdateChurch, ""); err != nil {
		return nil, err
	}

	ch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ch.LogoPath = &logoPath
	if err := s.repo.Update(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}
