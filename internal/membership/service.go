package membership

import (
	"context"
	"net/http"

	"github.com/openchurchhq/church-community-backend/internal/permission"
	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
)

// ErrActorNotMember is returned when the acting user has no membership in
// the church they are operating on.
var ErrActorNotMember = apperror.New(http.StatusForbidden, "you are not a member of this church")

// CampusDirectory is the narrow campus lookup the service needs to validate
// campus assignments. Satisfied by the campus repository.
type CampusDirectory interface {
	ExistsInChurch(ctx context.Context, churchID, campusID string) (bool, error)
}

// roleAssignCapabilities maps a desired target role to the capability that
// grants assigning it.
var roleAssignCapabilities = map[permission.Role]permission.Capability{
	permission.RoleOwner:     permission.CapPromoteToOwner,
	permission.RoleOverseer:  permission.CapPromoteToOverseer,
	permission.RoleModerator: permission.CapPromoteToModerator,
	permission.RoleMember:    permission.CapDemoteToMember,
}

// Service defines business logic for memberships. It is the single place
// where the permission authority meets stored membership state, so the other
// domain services authorize through it.
type Service interface {
	GetForUser(ctx context.Context, churchID, userID string) (*Membership, error)
	List(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Membership, int, error)

	// Authorize loads the actor's membership and checks the capability
	// against it. targetCampus is the campus of the acted-on entity, empty
	// for church-wide targets. Returns the actor's membership on success and
	// a 403 AppError on denial.
	Authorize(ctx context.Context, churchID, actorUserID string, capability permission.Capability, targetCampus string) (*Membership, error)

	// Join creates a membership directly; used by invite redemption and
	// join-request approval, which carry their own authorization.
	Join(ctx context.Context, churchID, userID string, campusID *string, role permission.Role) (*Membership, error)

	ChangeRole(ctx context.Context, churchID, actorUserID, targetUserID string, newRole permission.Role) (*Membership, error)
	AssignCampus(ctx context.Context, churchID, actorUserID, targetUserID string, campusID *string) (*Membership, error)
	Remove(ctx context.Context, churchID, actorUserID, targetUserID string) error
	Leave(ctx context.Context, churchID, userID string) error
	ListDepartures(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Departure, int, error)
}

type service struct {
	repo     Repository
	campuses CampusDirectory
}

// NewService creates a new membership service.
func NewService(repo Repository, campuses CampusDirectory) Service {
	return &service{repo: repo, campuses: campuses}
}

func (s *service) GetForUser(ctx context.Context, churchID, userID string) (*Membership, error) {
	return s.repo.GetForUser(ctx, churchID, userID)
}

func (s *service) List(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Membership, int, error) {
	// Any member may browse the roster; outsiders may not.
	if _, err := s.actor(ctx, churchID, actorUserID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, churchID, filter)
}

// actor loads the acting user's membership, mapping absence to a 403.
func (s *service) actor(ctx context.Context, churchID, actorUserID string) (*Membership, error) {
	m, err := s.repo.GetForUser(ctx, churchID, actorUserID)
	if err != nil {
		if err == ErrNotMember {
			return nil, ErrActorNotMember
		}
		return nil, err
	}
	return m, nil
}

func (s *service) Authorize(ctx context.Context, churchID, actorUserID string, capability permission.Capability, targetCampus string) (*Membership, error) {
	actor, err := s.actor(ctx, churchID, actorUserID)
	if err != nil {
		return nil, err
	}

	decision, err := permission.Authorize(actor.Role, capability, &permission.Scope{
		ActorCampus:  actor.Campus(),
		TargetCampus: targetCampus,
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperror.New(http.StatusForbidden, decision.Reason)
	}
	return actor, nil
}

func (s *service) Join(ctx context.Context, churchID, userID string, campusID *string, role permission.Role) (*Membership, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.validateCampus(ctx, churchID, campusID); err != nil {
		return nil, err
	}

	m := &Membership{
		UserID:   userID,
		ChurchID: churchID,
		CampusID: campusID,
		Role:     role,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ChangeRole(ctx context.Context, churchID, actorUserID, targetUserID string, newRole permission.Role) (*Membership, error) {
	if !newRole.Valid() {
		return nil, ErrInvalidRole
	}

	target, err := s.repo.GetForUser(ctx, churchID, targetUserID)
	if err != nil {
		return nil, err
	}

	capability := roleAssignCapabilities[newRole]
	actor, err := s.Authorize(ctx, churchID, actorUserID, capability, target.Campus())
	if err != nil {
		return nil, err
	}

	if err := s.requireRankOver(actor, target); err != nil {
		return nil, err
	}

	if target.Role == permission.RoleOwner && newRole != permission.RoleOwner {
		if err := s.requireAnotherOwner(ctx, churchID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateRole(ctx, churchID, targetUserID, string(newRole)); err != nil {
		return nil, err
	}
	return s.repo.GetForUser(ctx, churchID, targetUserID)
}

func (s *service) AssignCampus(ctx context.Context, churchID, actorUserID, targetUserID string, campusID *string) (*Membership, error) {
	if err := s.validateCampus(ctx, churchID, campusID); err != nil {
		return nil, err
	}

	target, err := s.repo.GetForUser(ctx, churchID, targetUserID)
	if err != nil {
		return nil, err
	}

	actor, err := s.Authorize(ctx, churchID, actorUserID, permission.CapAssignCampus, target.Campus())
	if err != nil {
		return nil, err
	}

	if err := s.requireRankOver(actor, target); err != nil {
		return nil, err
	}

	// Scoped actors may only move members into their own campus; clearing a
	// campus assignment is a church-wide act reserved for owners.
	if actor.Role != permission.RoleOwner {
		if campusID == nil || *campusID != actor.Campus() {
			return nil, apperror.New(http.StatusForbidden, "you may only assign members to your own campus")
		}
	}

	if err := s.repo.UpdateCampus(ctx, churchID, targetUserID, campusID); err != nil {
		return nil, err
	}
	return s.repo.GetForUser(ctx, churchID, targetUserID)
}

func (s *service) Remove(ctx context.Context, churchID, actorUserID, targetUserID string) error {
	target, err := s.repo.GetForUser(ctx, churchID, targetUserID)
	if err != nil {
		return err
	}

	actor, err := s.Authorize(ctx, churchID, actorUserID, permission.CapRemoveMembers, target.Campus())
	if err != nil {
		return err
	}

	if err := s.requireRankOver(actor, target); err != nil {
		return err
	}

	if target.Role == permission.RoleOwner {
		if err := s.requireAnotherOwner(ctx, churchID); err != nil {
			return err
		}
	}

	return s.repo.RemoveWithDeparture(ctx, target, DepartureRemoved)
}

func (s *service) Leave(ctx context.Context, churchID, userID string) error {
	m, err := s.repo.GetForUser(ctx, churchID, userID)
	if err != nil {
		return err
	}

	if m.Role == permission.RoleOwner {
		if err := s.requireAnotherOwner(ctx, churchID); err != nil {
			return err
		}
	}

	return s.repo.RemoveWithDeparture(ctx, m, DepartureLeft)
}

func (s *service) ListDepartures(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Departure, int, error) {
	// The departure log is church-wide, so scoped roles never qualify.
	if _, err := s.Authorize(ctx, churchID, actorUserID, permission.CapRemoveMembers, ""); err != nil {
		return nil, 0, err
	}
	return s.repo.ListDepartures(ctx, churchID, filter)
}

// requireRankOver enforces that the actor strictly outranks the target's
// current role. Owners are exempt so ownership can be handed over or
// reclaimed among owners.
func (s *service) requireRankOver(actor, target *Membership) error {
	if actor.Role == permission.RoleOwner {
		return nil
	}
	if !actor.Role.Outranks(target.Role) {
		return ErrTargetOutranks
	}
	return nil
}

// requireAnotherOwner rejects the operation if the church would be left
// without any owner.
func (s *service) requireAnotherOwner(ctx context.Context, churchID string) error {
	n, err := s.repo.CountOwners(ctx, churchID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastOwner
	}
	return nil
}

func (s *service) validateCampus(ctx context.Context, churchID string, campusID *string) error {
	if campusID == nil {
		return nil
	}
	ok, err := s.campuses.ExistsInChurch(ctx, churchID, *campusID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCampusNotFound
	}
	return nil
}
