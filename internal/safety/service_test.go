package safety

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
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
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

func (f *fakeMemberships) Join(context.Context, string, string, *string, permission.Role) (*membership.Membership, error) {
	return nil, nil
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

type fakeCampuses struct {
	valid map[string]bool
}

func (f *fakeCampuses) ExistsInChurch(_ context.Context, _, campusID string) (bool, error) {
	return f.valid[campusID], nil
}

type fakeRepository struct {
	members   map[string]*Member
	schedules map[string]*Schedule
	incidents map[string]*Incident
	nextID    int
}

func newFakeRepo() *fakeRepository {
	return &fakeRepository{
		members:   map[string]*Member{},
		schedules: map[string]*Schedule{},
		incidents: map[string]*Incident{},
	}
}

func (f *fakeRepository) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakeRepository) CreateMember(_ context.Context, m *Member) error {
	m.ID = f.id()
	cp := *m
	f.members[m.ID] = &cp
	return nil
}

func (f *fakeRepository) GetMember(_ context.Context, id string) (*Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepository) ListMembers(_ context.Context, chID string, filter MemberFilter) ([]*Member, error) {
	var out []*Member
	for _, m := range f.members {
		if m.ChurchID != chID {
			continue
		}
		if filter.ActiveOnly && !m.IsActive {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepository) UpdateMember(_ context.Context, m *Member) error {
	if _, ok := f.members[m.ID]; !ok {
		return ErrMemberNotFound
	}
	cp := *m
	f.members[m.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteMember(_ context.Context, id string) error {
	if _, ok := f.members[id]; !ok {
		return ErrMemberNotFound
	}
	delete(f.members, id)
	return nil
}

func (f *fakeRepository) CreateSchedule(_ context.Context, s *Schedule) error {
	s.ID = f.id()
	cp := *s
	f.schedules[s.ID] = &cp
	return nil
}

func (f *fakeRepository) GetSchedule(_ context.Context, id string) (*Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepository) ListSchedules(_ context.Context, chID string, _ ScheduleFilter) ([]*Schedule, int, error) {
	var out []*Schedule
	for _, s := range f.schedules {
		if m, ok := f.members[s.MemberID]; ok && m.ChurchID == chID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListForMemberDay(_ context.Context, memberID string, date timeslot.Date) ([]timeslot.Booking, error) {
	var out []timeslot.Booking
	for _, s := range f.schedules {
		if s.MemberID == memberID && s.Date == date && timeslot.IsActive(s.Status) {
			out = append(out, timeslot.Booking{
				ID:        s.ID,
				SubjectID: s.MemberID,
				Date:      s.Date,
				Start:     s.Start,
				End:       s.End,
				Status:    s.Status,
			})
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateSchedule(_ context.Context, s *Schedule) error {
	if _, ok := f.schedules[s.ID]; !ok {
		return ErrScheduleNotFound
	}
	cp := *s
	f.schedules[s.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteSchedule(_ context.Context, id string) error {
	if _, ok := f.schedules[id]; !ok {
		return ErrScheduleNotFound
	}
	delete(f.schedules, id)
	return nil
}

func (f *fakeRepository) CreateIncident(_ context.Context, i *Incident) error {
	i.ID = f.id()
	i.Status = IncidentOpen
	cp := *i
	f.incidents[i.ID] = &cp
	return nil
}

func (f *fakeRepository) GetIncident(_ context.Context, id string) (*Incident, error) {
	i, ok := f.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeRepository) ListIncidents(_ context.Context, chID string, filter IncidentFilter) ([]*Incident, int, error) {
	var out []*Incident
	for _, i := range f.incidents {
		if i.ChurchID != chID {
			continue
		}
		if filter.CampusID != "" && (i.CampusID == nil || *i.CampusID != filter.CampusID) {
			continue
		}
		if filter.Status != "" && i.Status != filter.Status {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRepository) Resolve(_ context.Context, id, resolverID string) error {
	i, ok := f.incidents[id]
	if !ok || i.Status != IncidentOpen {
		return ErrAlreadyResolved
	}
	now := time.Now()
	i.Status = IncidentResolved
	i.ResolvedBy = &resolverID
	i.ResolvedAt = &now
	return nil
}

const (
	churchID   = "11111111-1111-1111-1111-111111111111"
	campusMain = "22222222-2222-2222-2222-222222222222"
	campusEast = "33333333-3333-3333-3333-333333333333"
)

var testDate = timeslot.Date{Year: 2025, Month: 11, Day: 5}

func strPtr(s string) *string { return &s }

func minutes(t *testing.T, clock string) int {
	t.Helper()
	m, err := timeslot.ParseClock(clock)
	require.NoError(t, err)
	return m
}

func setup(t *testing.T) (*fakeMemberships, Service, string) {
	t.Helper()
	members := newFakeMemberships()
	members.add("owner", permission.RoleOwner, nil)
	repo := newFakeRepo()
	svc := NewService(repo, members, &fakeCampuses{valid: map[string]bool{campusMain: true, campusEast: true}})

	m, err := svc.AddMember(context.Background(), churchID, "owner", MemberRequest{
		CampusID: strPtr(campusMain),
		Name:     "Carol",
	})
	require.NoError(t, err)

	return members, svc, m.ID
}

func TestOverlappingShiftRejected(t *testing.T) {
	_, svc, memberID := setup(t)

	_, err := svc.CreateSchedule(context.Background(), churchID, "owner", CreateScheduleRequest{
		MemberID: memberID,
		Date:     testDate,
		Start:    minutes(t, "18:00"),
		End:      minutes(t, "22:00"),
	})
	require.NoError(t, err)

	_, err = svc.CreateSchedule(context.Background(), churchID, "owner", CreateScheduleRequest{
		MemberID: memberID,
		Date:     testDate,
		Start:    minutes(t, "21:00"),
		End:      minutes(t, "23:00"),
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Code)
}

func TestNoShowInvalidForSafetySchedules(t *testing.T) {
	_, svc, memberID := setup(t)

	s, err := svc.CreateSchedule(context.Background(), churchID, "owner", CreateScheduleRequest{
		MemberID: memberID,
		Date:     testDate,
		Start:    minutes(t, "18:00"),
		End:      minutes(t, "22:00"),
	})
	require.NoError(t, err)

	noShow := timeslot.StatusNoShow
	_, err = svc.UpdateSchedule(context.Background(), churchID, s.ID, "owner", UpdateScheduleRequest{
		Status: &noShow,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	completed := timeslot.StatusCompleted
	updated, err := svc.UpdateSchedule(context.Background(), churchID, s.ID, "owner", UpdateScheduleRequest{
		Status: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, timeslot.StatusCompleted, updated.Status)
}

func TestInactiveMemberNotSchedulable(t *testing.T) {
	_, svc, memberID := setup(t)

	inactive := false
	_, err := svc.UpdateMember(context.Background(), churchID, memberID, "owner", UpdateMemberRequest{
		IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = svc.CreateSchedule(context.Background(), churchID, "owner", CreateScheduleRequest{
		MemberID: memberID,
		Date:     testDate,
		Start:    minutes(t, "18:00"),
		End:      minutes(t, "22:00"),
	})
	assert.ErrorIs(t, err, ErrMemberInactive)
}

func TestReportIncidentValidatesSeverity(t *testing.T) {
	_, svc, _ := setup(t)

	_, err := svc.ReportIncident(context.Background(), churchID, "owner", IncidentRequest{
		Severity:    "critical",
		Description: "smoke in the lobby",
	})
	assert.ErrorIs(t, err, ErrInvalidSeverity)

	i, err := svc.ReportIncident(context.Background(), churchID, "owner", IncidentRequest{
		Severity:    SeverityHigh,
		Description: "smoke in the lobby",
	})
	require.NoError(t, err)
	assert.Equal(t, IncidentOpen, i.Status)
	assert.Equal(t, "owner", i.ReportedBy)
	assert.False(t, i.OccurredAt.IsZero())
}

func TestResolveIsTerminal(t *testing.T) {
	_, svc, _ := setup(t)

	i, err := svc.ReportIncident(context.Background(), churchID, "owner", IncidentRequest{
		Severity:    SeverityLow,
		Description: "broken door latch",
	})
	require.NoError(t, err)

	resolved, err := svc.ResolveIncident(context.Background(), churchID, i.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, IncidentResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "owner", *resolved.ResolvedBy)

	_, err = svc.ResolveIncident(context.Background(), churchID, i.ID, "owner")
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestModeratorViewsOwnCampusIncidents(t *testing.T) {
	members, svc, _ := setup(t)
	members.add("mod", permission.RoleModerator, strPtr(campusMain))

	_, err := svc.ReportIncident(context.Background(), churchID, "owner", IncidentRequest{
		CampusID:    strPtr(campusMain),
		Severity:    SeverityMedium,
		Description: "spill near entrance",
	})
	require.NoError(t, err)
	_, err = svc.ReportIncident(context.Background(), churchID, "owner", IncidentRequest{
		CampusID:    strPtr(campusEast),
		Severity:    SeverityMedium,
		Description: "parking lot dispute",
	})
	require.NoError(t, err)

	all, _, err := svc.ListIncidents(context.Background(), churchID, "owner", IncidentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, _, err := svc.ListIncidents(context.Background(), churchID, "mod", IncidentFilter{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, campusMain, *scoped[0].CampusID)
}

func TestMemberCannotReportOrResolve(t *testing.T) {
	members, svc, _ := setup(t)
	members.add("u1", permission.RoleMember, strPtr(campusMain))

	_, err := svc.ReportIncident(context.Background(), churchID, "u1", IncidentRequest{
		Severity:    SeverityLow,
		Description: "squeaky pew",
	})
	assert.Error(t, err)
}

func TestEastOverseerCannotManageMainTeam(t *testing.T) {
	members, svc, memberID := setup(t)
	members.add("eastOverseer", permission.RoleOverseer, strPtr(campusEast))

	_, err := svc.CreateSchedule(context.Background(), churchID, "eastOverseer", CreateScheduleRequest{
		MemberID: memberID,
		Date:     testDate,
		Start:    minutes(t, "09:00"),
		End:      minutes(t, "10:00"),
	})
	assert.Error(t, err)

	err = svc.RemoveMember(context.Background(), churchID, memberID, "eastOverseer")
	assert.Error(t, err)
}
