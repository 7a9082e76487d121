package invite

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
)

// Code alphabet avoids ambiguous characters (0/O, 1/I/L) so codes survive
// being read aloud or printed next to a QR image.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const codeLength = 8
const maxCodeAttempts = 5

// CreateRequest defines fields for creating an invite.
type CreateRequest struct {
	CampusID  *string
	ExpiresAt *time.Time
	MaxUses   int
}

// Service defines business logic for invites.
type Service interface {
	Create(ctx context.Context, churchID, actorUserID string, req CreateRequest) (*Invite, error)
	List(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Invite, int, error)
	Revoke(ctx context.Context, churchID, id, actorUserID string) error

	// GetByCode returns the invite for preview before redemption.
	GetByCode(ctx context.Context, code string) (*Invite, error)
	// Redeem consumes one use and creates a member-level membership bound
	// to the invite's campus.
	Redeem(ctx context.Context, code, userID string) (*membership.Membership, error)
}

type service struct {
	repo        Repository
	memberships membership.Service
	now         func() time.Time
}

// NewService creates a new invite service.
func NewService(repo Repository, memberships membership.Service) Service {
	return &service{
		repo:        repo,
		memberships: memberships,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, churchID, actorUserID string, req CreateRequest) (*Invite, error) {
	targetCampus := ""
	if req.CampusID != nil {
		targetCampus = *req.CampusID
	}
	actor, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapCreateInvites, targetCampus)
	if err != nil {
		return nil, err
	}

	inv := &Invite{
		ChurchID:  churchID,
		CampusID:  req.CampusID,
		CreatedBy: actor.UserID,
		ExpiresAt: req.ExpiresAt,
		MaxUses:   req.MaxUses,
	}

	// Collisions are rare at this alphabet size; retry a few times before
	// giving up.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}
		inv.Code = code

		err = s.repo.Create(ctx, inv)
		if err == nil {
			return inv, nil
		}
		if err != ErrCodeTaken {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to generate a unique invite code after %d attempts", maxCodeAttempts)
}

func (s *service) List(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Invite, int, error) {
	actor, err := s.memberships.GetForUser(ctx, churchID, actorUserID)
	if err != nil {
		return nil, 0, membership.ErrActorNotMember
	}

	// Owners browse everything; scoped roles see only their own campus.
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapCreateInvites, actor.Campus()); err != nil {
		return nil, 0, err
	}
	if actor.Role != permission.RoleOwner {
		filter.CampusID = actor.Campus()
	}

	return s.repo.List(ctx, churchID, filter)
}

func (s *service) Revoke(ctx context.Context, churchID, id, actorUserID string) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.ChurchID != churchID {
		return ErrNotFound
	}

	targetCampus := ""
	if inv.CampusID != nil {
		targetCampus = *inv.CampusID
	}
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapRevokeInvites, targetCampus); err != nil {
		return err
	}

	return s.repo.Revoke(ctx, id)
}

func (s *service) GetByCode(ctx context.Context, code string) (*Invite, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) Redeem(ctx context.Context, code, userID string) (*membership.Membership, error) {
	inv, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := inv.Usable(s.now()); err != nil {
		return nil, err
	}

	// Claim before joining so max_uses holds under concurrent redemption;
	// release the claim if the join is rejected.
	if err := s.repo.ClaimUse(ctx, inv.ID); err != nil {
		return nil, err
	}

	m, err := s.memberships.Join(ctx, inv.ChurchID, userID, inv.CampusID, permission.RoleMember)
	if err != nil {
		if releaseErr := s.repo.ReleaseUse(ctx, inv.ID); releaseErr != nil {
			return nil, fmt.Errorf("join failed (%w) and use release failed: %v", err, releaseErr)
		}
		return nil, err
	}
	return m, nil
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
