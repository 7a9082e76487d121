package joinrequest

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
)

type fakeMemberships struct {
	members map[string]*membership.Membership
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{members: map[string]*membership.Membership{}}
}

func (f *fakeMemberships) add(userID string, role permission.Role, campusID *string) {
	f.members[userID] = &membership.Membership{
		UserID:   userID,
		ChurchID: churchID,
		CampusID: campusID,
		Role:     role,
	}
}

func (f *fakeMemberships) GetForUser(_ context.Context, _, userID string) (*membership.Membership, error) {
	m, ok := f.members[userID]
	if !ok {
		return nil, membership.ErrNotMember
	}
	return m, nil
}

func (f *fakeMemberships) List(context.Context, string, string, membership.Filter) ([]*membership.Membership, int, error) {
	return nil, 0, nil
}

func (f *fakeMemberships) Authorize(_ context.Context, _, actorUserID string, capability permission.Capability, targetCampus string) (*membership.Membership, error) {
	actor, ok := f.members[actorUserID]
	if !ok {
		return nil, membership.ErrActorNotMember
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

func (f *fakeMemberships) Join(_ context.Context, _, userID string, campusID *string, role permission.Role) (*membership.Membership, error) {
	if _, ok := f.members[userID]; ok {
		return nil, membership.ErrAlreadyMember
	}
	f.add(userID, role, campusID)
	return f.members[userID], nil
}

func (f *fakeMemberships) ChangeRole(context.Context, string, string, string, permission.Role) (*membership.Membership, error) {
	return nil, nil
}

func (f *fakeMemberships) AssignCampus(context.Context, string, string, string, *string) (*membership.Membership, error) {
	return nil, nil
}

func (f *fakeMemberships) Remove(context.Context, string, string, string) error { return nil }
func (f *fakeMemberships) Leave(context.Context, string, string) error          { return nil }

func (f *fakeMemberships) ListDepartures(context.Context, string, string, membership.Filter) ([]*membership.Departure, int, error) {
	return nil, 0, nil
}

// fakeRepository mirrors the one-pending-per-user constraint and the
// approve-with-membership transaction.
type fakeRepository struct {
	requests    map[string]*JoinRequest
	memberships *fakeMemberships
	nextID      int
}

func newFakeRepo(members *fakeMemberships) *fakeRepository {
	return &fakeRepository{requests: map[string]*JoinRequest{}, memberships: members}
}

func (f *fakeRepository) Create(_ context.Context, req *JoinRequest) error {
	for _, r := range f.requests {
		if r.UserID == req.UserID && r.ChurchID == req.ChurchID && r.Status == StatusPending {
			return ErrAlreadyPending
		}
	}
	f.nextID++
	req.ID = strconv.Itoa(f.nextID)
	req.Status = StatusPending
	req.CreatedAt = time.Now()
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*JoinRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepository) ListForChurch(_ context.Context, chID string, filter Filter) ([]*JoinRequest, int, error) {
	var out []*JoinRequest
	for _, r := range f.requests {
		if r.ChurchID != chID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.CampusID != "" && (r.CampusID == nil || *r.CampusID != filter.CampusID) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListForUser(_ context.Context, userID string) ([]*JoinRequest, error) {
	var out []*JoinRequest
	for _, r := range f.requests {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) ApproveWithMembership(ctx context.Context, id, reviewerID string) error {
	r, ok := f.requests[id]
	if !ok || r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	if _, err := f.memberships.Join(ctx, r.ChurchID, r.UserID, r.CampusID, permission.RoleMember); err != nil {
		return ErrAlreadyMember
	}
	now := time.Now()
	r.Status = StatusApproved
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	return nil
}

func (f *fakeRepository) Reject(_ context.Context, id, reviewerID string) error {
	r, ok := f.requests[id]
	if !ok || r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	now := time.Now()
	r.Status = StatusRejected
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	return nil
}

func (f *fakeRepository) DeletePending(_ context.Context, id string) error {
	r, ok := f.requests[id]
	if !ok || r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	delete(f.requests, id)
	return nil
}

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

func strPtr(s string) *string { return &s }

func setup(t *testing.T) (*fakeMemberships, Service) {
	t.Helper()
	members := newFakeMemberships()
	repo := newFakeRepo(members)
	svc := NewService(repo, members, &fakeCampuses{valid: map[string]bool{campusMain: true, campusEast: true}})
	return members, svc
}

func TestCreateByNonMember(t *testing.T) {
	_, svc := setup(t)

	jr, err := svc.Create(context.Background(), churchID, "seeker", CreateRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, jr.Status)
	assert.Equal(t, "seeker", jr.UserID)
}

func TestCreateByMemberRejected(t *testing.T) {
	members, svc := setup(t)
	members.add("u1", permission.RoleMember, nil)

	_, err := svc.Create(context.Background(), churchID, "u1", CreateRequest{})
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestOnePendingPerChurch(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Create(context.Background(), churchID, "seeker", CreateRequest{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), churchID, "seeker", CreateRequest{})
	assert.ErrorIs(t, err, ErrAlreadyPending)
}

func TestCreateUnknownCampus(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Create(context.Background(), churchID, "seeker", CreateRequest{
		CampusID: strPtr("44444444-4444-4444-4444-444444444444"),
	})
	assert.ErrorIs(t, err, ErrCampusNotFound)
}

func TestApproveCreatesMembership(t *testing.T) {
	members, svc := setup(t)
	members.add("owner", permission.RoleOwner, nil)

	jr, err := svc.Create(context.Background(), churchID, "seeker", CreateRequest{CampusID: strPtr(campusMain)})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), churchID, jr.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "owner", *approved.ReviewedBy)

	m, err := members.GetForUser(context.Background(), churchID, "seeker")
	require.NoError(t, err)
	assert.Equal(t, permission.RoleMember, m.Role)
	require.NotNil(t, m.CampusID)
	assert.Equal(t, campusMain, *m.CampusID)
}

func TestDecisionsAreTerminal(t *testing.T) {
	members, svc := setup(t)
	members.add("owner", permission.RoleOwner, nil)

	jr, err := svc.Create(context.Background(), churchID, "seeker", CreateRequest{})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), churchID, jr.ID, "owner")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), churchID, jr.ID, "owner")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = svc.Reject(context.Background(), churchID, jr.ID, "owner")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestModeratorReviewsOwnCampusOnly(t *testing.T) {
	members, svc := setup(t)
	members.add("mod", permission.RoleModerator, strPtr(campusMain))

	inCampus, err := svc.Create(context.Background(), churchID, "seeker1", CreateRequest{CampusID: strPtr(campusMain)})
	require.NoError(t, err)
	outside, err := svc.Create(context.Background(), churchID, "seeker2", CreateRequest{CampusID: strPtr(campusEast)})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), churchID, outside.ID, "mod")
	assert.Error(t, err)

	approved, err := svc.Approve(context.Background(), churchID, inCampus.ID, "mod")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
}

func TestMemberCannotReview(t *testing.T) {
	members, svc := setup(t)
	members.add("u1", permission.RoleMember, nil)

	jr, err := svc.Create(context.Background(), churchID, "seeker", CreateRequest{})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), churchID, jr.ID, "u1")
	assert.Error(t, err)
}

func TestListScopedForModerator(t *testing.T) {
	members, svc := setup(t)
	members.add("owner", permission.RoleOwner, nil)
	members.add("mod", permission.RoleModerator, strPtr(campusMain))

	_, err := svc.Create(context.Background(), churchID, "seeker1", CreateRequest{CampusID: strPtr(campusMain)})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), churchID, "seeker2", CreateRequest{CampusID: strPtr(campusEast)})
	require.NoError(t, err)

	all, _, err := svc.ListForChurch(context.Background(), churchID, "owner", Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, _, err := svc.ListForChurch(context.Background(), churchID, "mod", Filter{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "seeker1", scoped[0].UserID)
}

func TestCancelOwnPendingOnly(t *testing.T) {
	_, svc := setup(t)

	jr, err := svc.Create(context.Background(), churchID, "seeker", CreateRequest{})
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), jr.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotRequester)

	require.NoError(t, svc.Cancel(context.Background(), jr.ID, "seeker"))

	mine, err := svc.ListMine(context.Background(), "seeker")
	require.NoError(t, err)
	assert.Empty(t, mine)
}
