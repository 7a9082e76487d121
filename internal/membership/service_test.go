package membership

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchurchhq/church-community-backend/internal/permission"
)

// fakeRepository keeps memberships in memory, keyed by church then user.
type fakeRepository struct {
	members    map[string]map[string]*Membership
	departures []*Departure
	nextID     int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{members: map[string]map[string]*Membership{}}
}

func (f *fakeRepository) Create(_ context.Context, m *Membership) error {
	if _, ok := f.members[m.ChurchID][m.UserID]; ok {
		return ErrAlreadyMember
	}
	f.nextID++
	m.ID = string(rune('a' + f.nextID))
	if f.members[m.ChurchID] == nil {
		f.members[m.ChurchID] = map[string]*Membership{}
	}
	cp := *m
	f.members[m.ChurchID][m.UserID] = &cp
	return nil
}

func (f *fakeRepository) GetForUser(_ context.Context, churchID, userID string) (*Membership, error) {
	m, ok := f.members[churchID][userID]
	if !ok {
		return nil, ErrNotMember
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepository) List(_ context.Context, churchID string, _ Filter) ([]*Membership, int, error) {
	var out []*Membership
	for _, m := range f.members[churchID] {
		cp := *m
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRepository) UpdateRole(_ context.Context, churchID, userID, role string) error {
	m, ok := f.members[churchID][userID]
	if !ok {
		return ErrNotMember
	}
	m.Role = permission.Role(role)
	return nil
}

func (f *fakeRepository) UpdateCampus(_ context.Context, churchID, userID string, campusID *string) error {
	m, ok := f.members[churchID][userID]
	if !ok {
		return ErrNotMember
	}
	m.CampusID = campusID
	return nil
}

func (f *fakeRepository) CountOwners(_ context.Context, churchID string) (int, error) {
	n := 0
	for _, m := range f.members[churchID] {
		if m.Role == permission.RoleOwner {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) RemoveWithDeparture(_ context.Context, m *Membership, reason DepartureReason) error {
	if _, ok := f.members[m.ChurchID][m.UserID]; !ok {
		return ErrNotMember
	}
	delete(f.members[m.ChurchID], m.UserID)
	f.departures = append(f.departures, &Departure{
		UserID:   m.UserID,
		ChurchID: m.ChurchID,
		Role:     m.Role,
		Reason:   reason,
	})
	return nil
}

func (f *fakeRepository) ListDepartures(_ context.Context, churchID string, _ Filter) ([]*Departure, int, error) {
	var out []*Departure
	for _, d := range f.departures {
		if d.ChurchID == churchID {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

// fakeCampuses accepts every campus listed in valid.
type fakeCampuses struct {
	valid map[string]bool
}

func (f *fakeCampuses) ExistsInChurch(_ context.Context, _, campusID string) (bool, error) {
	return f.valid[campusID], nil
}

const (
	churchID   = "11111111-1111-1111-1111-111111111111"
	campusMain = "22222222-2222-2222-2222-222222222222"
	campusEast = "33333333-3333-3333-3333-333333333333"
)

func setup(t *testing.T) (*fakeRepository, Service) {
	t.Helper()
	repo := newFakeRepository()
	svc := NewService(repo, &fakeCampuses{valid: map[string]bool{campusMain: true, campusEast: true}})
	return repo, svc
}

func seed(t *testing.T, svc Service, userID string, role permission.Role, campusID *string) {
	t.Helper()
	_, err := svc.Join(context.Background(), churchID, userID, campusID, role)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func TestJoinRejectsUnknownCampus(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Join(context.Background(), churchID, "u1", strPtr("44444444-4444-4444-4444-444444444444"), permission.RoleMember)
	assert.ErrorIs(t, err, ErrCampusNotFound)
}

func TestJoinTwiceFails(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "u1", permission.RoleMember, nil)

	_, err := svc.Join(context.Background(), churchID, "u1", nil, permission.RoleMember)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestChangeRoleByOwner(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)
	seed(t, svc, "u1", permission.RoleMember, strPtr(campusMain))

	m, err := svc.ChangeRole(context.Background(), churchID, "owner", "u1", permission.RoleOverseer)
	require.NoError(t, err)
	assert.Equal(t, permission.RoleOverseer, m.Role)
}

func TestOwnerMayHandOverOwnership(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)
	seed(t, svc, "u1", permission.RoleOverseer, nil)

	m, err := svc.ChangeRole(context.Background(), churchID, "owner", "u1", permission.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, permission.RoleOwner, m.Role)
}

func TestOverseerCannotPromoteToOverseer(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "overseer", permission.RoleOverseer, strPtr(campusMain))
	seed(t, svc, "u1", permission.RoleMember, strPtr(campusMain))

	_, err := svc.ChangeRole(context.Background(), churchID, "overseer", "u1", permission.RoleOverseer)
	assert.Error(t, err)
}

func TestOverseerPromotesToModeratorInOwnCampus(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "overseer", permission.RoleOverseer, strPtr(campusMain))
	seed(t, svc, "u1", permission.RoleMember, strPtr(campusMain))

	m, err := svc.ChangeRole(context.Background(), churchID, "overseer", "u1", permission.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, permission.RoleModerator, m.Role)
}

func TestOverseerBlockedOutsideOwnCampus(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "overseer", permission.RoleOverseer, strPtr(campusMain))
	seed(t, svc, "u1", permission.RoleMember, strPtr(campusEast))

	_, err := svc.ChangeRole(context.Background(), churchID, "overseer", "u1", permission.RoleModerator)
	assert.Error(t, err)
}

func TestOverseerCannotDemotePeerOverseer(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "overseer", permission.RoleOverseer, strPtr(campusMain))
	seed(t, svc, "peer", permission.RoleOverseer, strPtr(campusMain))

	_, err := svc.ChangeRole(context.Background(), churchID, "overseer", "peer", permission.RoleMember)
	assert.ErrorIs(t, err, ErrTargetOutranks)
}

func TestModeratorCannotChangeRoles(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "mod", permission.RoleModerator, strPtr(campusMain))
	seed(t, svc, "u1", permission.RoleMember, strPtr(campusMain))

	_, err := svc.ChangeRole(context.Background(), churchID, "mod", "u1", permission.RoleModerator)
	assert.Error(t, err)
}

func TestDemoteLastOwnerBlocked(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)

	_, err := svc.ChangeRole(context.Background(), churchID, "owner", "owner", permission.RoleMember)
	assert.ErrorIs(t, err, ErrLastOwner)
}

func TestDemoteOwnerWithCoOwner(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)
	seed(t, svc, "owner2", permission.RoleOwner, nil)

	m, err := svc.ChangeRole(context.Background(), churchID, "owner", "owner2", permission.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, permission.RoleMember, m.Role)
}

func TestAssignCampus(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)
	seed(t, svc, "u1", permission.RoleMember, nil)

	m, err := svc.AssignCampus(context.Background(), churchID, "owner", "u1", strPtr(campusEast))
	require.NoError(t, err)
	require.NotNil(t, m.CampusID)
	assert.Equal(t, campusEast, *m.CampusID)
}

func TestOverseerAssignsOnlyIntoOwnCampus(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "overseer", permission.RoleOverseer, strPtr(campusMain))
	seed(t, svc, "u1", permission.RoleMember, strPtr(campusMain))

	_, err := svc.AssignCampus(context.Background(), churchID, "overseer", "u1", strPtr(campusEast))
	assert.Error(t, err)

	m, err := svc.AssignCampus(context.Background(), churchID, "overseer", "u1", strPtr(campusMain))
	require.NoError(t, err)
	require.NotNil(t, m.CampusID)
	assert.Equal(t, campusMain, *m.CampusID)
}

func TestRemoveRecordsDeparture(t *testing.T) {
	repo, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)
	seed(t, svc, "u1", permission.RoleMember, nil)

	require.NoError(t, svc.Remove(context.Background(), churchID, "owner", "u1"))

	_, err := svc.GetForUser(context.Background(), churchID, "u1")
	assert.ErrorIs(t, err, ErrNotMember)

	require.Len(t, repo.departures, 1)
	assert.Equal(t, DepartureRemoved, repo.departures[0].Reason)
	assert.Equal(t, "u1", repo.departures[0].UserID)
}

func TestLastOwnerCannotLeave(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)
	seed(t, svc, "u1", permission.RoleMember, nil)

	err := svc.Leave(context.Background(), churchID, "owner")
	assert.ErrorIs(t, err, ErrLastOwner)

	require.NoError(t, svc.Leave(context.Background(), churchID, "u1"))
}

func TestMemberCannotRemoveAnyone(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "u1", permission.RoleMember, nil)
	seed(t, svc, "u2", permission.RoleMember, nil)

	err := svc.Remove(context.Background(), churchID, "u1", "u2")
	assert.Error(t, err)
}

func TestListRequiresMembership(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "u1", permission.RoleMember, nil)

	_, _, err := svc.List(context.Background(), churchID, "outsider", Filter{})
	assert.ErrorIs(t, err, ErrActorNotMember)

	_, total, err := svc.List(context.Background(), churchID, "u1", Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListDeparturesOwnerOnly(t *testing.T) {
	_, svc := setup(t)
	seed(t, svc, "owner", permission.RoleOwner, nil)
	seed(t, svc, "overseer", permission.RoleOverseer, strPtr(campusMain))
	seed(t, svc, "u1", permission.RoleMember, nil)

	require.NoError(t, svc.Remove(context.Background(), churchID, "owner", "u1"))

	_, total, err := svc.ListDepartures(context.Background(), churchID, "owner", Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// The departure log is church-wide, so a campus-scoped overseer is
	// denied.
	_, _, err = svc.ListDepartures(context.Background(), churchID, "overseer", Filter{})
	assert.Error(t, err)
}
