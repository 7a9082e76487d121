package joinrequest

import (
	"context"
	"errors"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
)

// CampusDirectory answers whether a campus belongs to a church.
type CampusDirectory interface {
	ExistsInChurch(ctx context.Context, churchID, campusID string) (bool, error)
}

type CreateRequest struct {
	CampusID *string
	Message  string
}

type Service interface {
	// Create files a join request on behalf of a non-member.
	Create(ctx context.Context, churchID, userID string, req CreateRequest) (*JoinRequest, error)
	ListForChurch(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*JoinRequest, int, error)
	ListMine(ctx context.Context, userID string) ([]*JoinRequest, error)

	Approve(ctx context.Context, churchID, id, actorUserID string) (*JoinRequest, error)
	Reject(ctx context.Context, churchID, id, actorUserID string) (*JoinRequest, error)
	// Cancel withdraws the requester's own pending request.
	Cancel(ctx context.Context, id, userID string) error
}

type service struct {
	repo        Repository
	memberships membership.Service
	campuses    CampusDirectory
}

// NewService creates a new join request service.
func NewService(repo Repository, memberships membership.Service, campuses CampusDirectory) Service {
	return &service{repo: repo, memberships: memberships, campuses: campuses}
}

func (s *service) Create(ctx context.Context, churchID, userID string, req CreateRequest) (*JoinRequest, error) {
	_, err := s.memberships.GetForUser(ctx, churchID, userID)
	if err == nil {
		return nil, ErrAlreadyMember
	}
	if !errors.Is(err, membership.ErrNotMember) {
		return nil, err
	}

	if req.CampusID != nil {
		ok, err := s.campuses.ExistsInChurch(ctx, churchID, *req.CampusID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCampusNotFound
		}
	}

	jr := &JoinRequest{
		UserID:   userID,
		ChurchID: churchID,
		CampusID: req.CampusID,
		Message:  req.Message,
	}
	if err := s.repo.Create(ctx, jr); err != nil {
		return nil, err
	}
	return jr, nil
}

func (s *service) ListForChurch(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*JoinRequest, int, error) {
	actor, err := s.memberships.GetForUser(ctx, churchID, actorUserID)
	if err != nil {
		return nil, 0, membership.ErrActorNotMember
	}

	// Owners browse everything; scoped reviewers see only their own campus.
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapReviewJoinRequests, actor.Campus()); err != nil {
		return nil, 0, err
	}
	if actor.Role != permission.RoleOwner {
		filter.CampusID = actor.Campus()
	}

	return s.repo.ListForChurch(ctx, churchID, filter)
}

func (s *service) ListMine(ctx context.Context, userID string) ([]*JoinRequest, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) Approve(ctx context.Context, churchID, id, actorUserID string) (*JoinRequest, error) {
	jr, actor, err := s.authorizeReview(ctx, churchID, id, actorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ApproveWithMembership(ctx, jr.ID, actor.UserID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, jr.ID)
}

func (s *service) Reject(ctx context.Context, churchID, id, actorUserID string) (*JoinRequest, error) {
	jr, actor, err := s.authorizeReview(ctx, churchID, id, actorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Reject(ctx, jr.ID, actor.UserID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, jr.ID)
}

func (s *service) Cancel(ctx context.Context, id, userID string) error {
	jr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if jr.UserID != userID {
		return ErrNotRequester
	}
	if jr.Status != StatusPending {
		return ErrAlreadyDecided
	}
	return s.repo.DeletePending(ctx, id)
}

func (s *service) authorizeReview(ctx context.Context, churchID, id, actorUserID string) (*JoinRequest, *membership.Membership, error) {
	jr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if jr.ChurchID != churchID {
		return nil, nil, ErrNotFound
	}
	if jr.Status != StatusPending {
		return nil, nil, ErrAlreadyDecided
	}

	actor, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapReviewJoinRequests, jr.Campus())
	if err != nil {
		return nil, nil, err
	}
	return jr, actor, nil
}
