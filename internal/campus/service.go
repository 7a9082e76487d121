package campus

import (
	"context"
	"strings"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
)

// UpdateRequest defines the fields that can be updated.
type UpdateRequest struct {
	Name    *string
	Address *string
}

// Service defines business logic for campuses.
type Service interface {
	Create(ctx context.Context, churchID, actorUserID, name, address string) (*Campus, error)
	GetByID(ctx context.Context, churchID, id string) (*Campus, error)
	ListByChurch(ctx context.Context, churchID, actorUserID string) ([]*Campus, error)
	Update(ctx context.Context, churchID, id, actorUserID string, req UpdateRequest) (*Campus, error)
	Delete(ctx context.Context, churchID, id, actorUserID string) error
}

type service struct {
	repo        Repository
	memberships membership.Service
}

// NewService creates a new campus service.
func NewService(repo Repository, memberships membership.Service) Service {
	return &service{repo: repo, memberships: memberships}
}

func (s *service) Create(ctx context.Context, churchID, actorUserID, name, address string) (*Campus, error) {
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageCampuses, ""); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var addrPtr *string
	if a := strings.TrimSpace(address); a != "" {
		addrPtr = &a
	}

	cp := &Campus{
		ChurchID: churchID,
		Name:     name,
		Address:  addrPtr,
	}
	if err := s.repo.Create(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *service) GetByID(ctx context.Context, churchID, id string) (*Campus, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.ChurchID != churchID {
		return nil, ErrNotFound
	}
	return cp, nil
}

func (s *service) ListByChurch(ctx context.Context, churchID, actorUserID string) ([]*Campus, error) {
	if _, err := s.memberships.GetForUser(ctx, churchID, actorUserID); err != nil {
		return nil, membership.ErrActorNotMember
	}
	return s.repo.ListByChurch(ctx, churchID)
}

func (s *service) Update(ctx context.Context, churchID, id, actorUserID string, req UpdateRequest) (*Campus, error) {
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageCampuses, ""); err != nil {
		return nil, err
	}

	cp, err := s.GetByID(ctx, churchID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		newName := strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, ErrNameRequired
		}
		cp.Name = newName
	}
	if req.Address != nil {
		if a := strings.TrimSpace(*req.Address); a != "" {
			cp.Address = &a
		} else {
			cp.Address = nil
		}
	}

	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *service) Delete(ctx context.Context, churchID, id, actorUserID string) error {
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageCampuses, ""); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, churchID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
