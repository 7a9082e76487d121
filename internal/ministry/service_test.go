package ministry

import (
	"context"
	"net/http"
	"strconv"
	"testing"

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
	ministries map[string]*Ministry
	volunteers map[string]*Volunteer
	schedules  map[string]*Schedule
	nextID     int
}

func newFakeRepo() *fakeRepository {
	return &fakeRepository{
		ministries: map[string]*Ministry{},
		volunteers: map[string]*Volunteer{},
		schedules:  map[string]*Schedule{},
	}
}

func (f *fakeRepository) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakeRepository) CreateMinistry(_ context.Context, m *Ministry) error {
	m.ID = f.id()
	cp := *m
	f.ministries[m.ID] = &cp
	return nil
}

func (f *fakeRepository) GetMinistry(_ context.Context, id string) (*Ministry, error) {
	m, ok := f.ministries[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepository) ListMinistries(_ context.Context, chID string, _ Filter) ([]*Ministry, int, error) {
	var out []*Ministry
	for _, m := range f.ministries {
		if m.ChurchID == chID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) UpdateMinistry(_ context.Context, m *Ministry) error {
	if _, ok := f.ministries[m.ID]; !ok {
		return ErrNotFound
	}
	cp := *m
	f.ministries[m.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteMinistry(_ context.Context, id string) error {
	if _, ok := f.ministries[id]; !ok {
		return ErrNotFound
	}
	delete(f.ministries, id)
	return nil
}

func (f *fakeRepository) CreateVolunteer(_ context.Context, v *Volunteer) error {
	v.ID = f.id()
	cp := *v
	f.volunteers[v.ID] = &cp
	return nil
}

func (f *fakeRepository) GetVolunteer(_ context.Context, id string) (*Volunteer, error) {
	v, ok := f.volunteers[id]
	if !ok {
		return nil, ErrVolunteerNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeRepository) ListVolunteers(_ context.Context, ministryID string) ([]*Volunteer, error) {
	var out []*Volunteer
	for _, v := range f.volunteers {
		if v.MinistryID == ministryID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateVolunteer(_ context.Context, v *Volunteer) error {
	if _, ok := f.volunteers[v.ID]; !ok {
		return ErrVolunteerNotFound
	}
	cp := *v
	f.volunteers[v.ID] = &cp
	return nil
}

func (f *fakeRepository) DeleteVolunteer(_ context.Context, id string) error {
	if _, ok := f.volunteers[id]; !ok {
		return ErrVolunteerNotFound
	}
	delete(f.volunteers, id)
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

func (f *fakeRepository) ListSchedules(_ context.Context, ministryID string, _ ScheduleFilter) ([]*Schedule, int, error) {
	var out []*Schedule
	for _, s := range f.schedules {
		if v, ok := f.volunteers[s.VolunteerID]; ok && v.MinistryID == ministryID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListForVolunteerDay(_ context.Context, volunteerID string, date timeslot.Date) ([]timeslot.Booking, error) {
	var out []timeslot.Booking
	for _, s := range f.schedules {
		if s.VolunteerID == volunteerID && s.Date == date && timeslot.IsActive(s.Status) {
			out = append(out, timeslot.Booking{
				ID:        s.ID,
				SubjectID: s.VolunteerID,
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

// setup seeds an owner, a ministry on the main campus and one active
// volunteer, returning their IDs.
func setup(t *testing.T) (*fakeMemberships, Service, string, string) {
	t.Helper()
	members := newFakeMemberships()
	members.add("owner", permission.RoleOwner, nil)
	repo := newFakeRepo()
	svc := NewService(repo, members, &fakeCampuses{valid: map[string]bool{campusMain: true, campusEast: true}})

	m, err := svc.CreateMinistry(context.Background(), churchID, "owner", CreateMinistryRequest{
		CampusID: strPtr(campusMain),
		Name:     "Worship Team",
	})
	require.NoError(t, err)

	v, err := svc.AddVolunteer(context.Background(), churchID, m.ID, "owner", VolunteerRequest{Name: "Alice"})
	require.NoError(t, err)

	return members, svc, m.ID, v.ID
}

func schedule(t *testing.T, svc Service, ministryID, volunteerID, start, end string) *Schedule {
	t.Helper()
	s, err := svc.CreateSchedule(context.Background(), churchID, ministryID, "owner", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, start),
		End:         minutes(t, end),
	})
	require.NoError(t, err)
	return s
}

func TestOverlappingScheduleRejected(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)
	schedule(t, svc, ministryID, volunteerID, "09:00", "12:00")

	_, err := svc.CreateSchedule(context.Background(), churchID, ministryID, "owner", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, "11:30"),
		End:         minutes(t, "13:00"),
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Code)
	assert.Contains(t, appErr.Message, "09:00")
	assert.Contains(t, appErr.Message, "12:00")
}

func TestBackToBackSchedulesAllowed(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)
	schedule(t, svc, ministryID, volunteerID, "09:00", "12:00")

	_, err := svc.CreateSchedule(context.Background(), churchID, ministryID, "owner", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, "12:00"),
		End:         minutes(t, "13:00"),
	})
	assert.NoError(t, err)
}

func TestCancelledScheduleFreesSlot(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)
	s := schedule(t, svc, ministryID, volunteerID, "09:00", "12:00")

	cancelled := timeslot.StatusCancelled
	_, err := svc.UpdateSchedule(context.Background(), churchID, ministryID, s.ID, "owner", UpdateScheduleRequest{
		Status: &cancelled,
	})
	require.NoError(t, err)

	_, err = svc.CreateSchedule(context.Background(), churchID, ministryID, "owner", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, "09:30"),
		End:         minutes(t, "11:00"),
	})
	assert.NoError(t, err)
}

func TestUpdateExcludesOwnBooking(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)
	s := schedule(t, svc, ministryID, volunteerID, "09:00", "12:00")

	// Shifting within its own window must not conflict with itself.
	start := minutes(t, "09:30")
	end := minutes(t, "12:30")
	updated, err := svc.UpdateSchedule(context.Background(), churchID, ministryID, s.ID, "owner", UpdateScheduleRequest{
		Start: &start,
		End:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, start, updated.Start)
	assert.Equal(t, end, updated.End)
}

func TestUpdateIntoOtherBookingRejected(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)
	schedule(t, svc, ministryID, volunteerID, "09:00", "10:00")
	s := schedule(t, svc, ministryID, volunteerID, "11:00", "12:00")

	start := minutes(t, "09:30")
	end := minutes(t, "10:30")
	_, err := svc.UpdateSchedule(context.Background(), churchID, ministryID, s.ID, "owner", UpdateScheduleRequest{
		Start: &start,
		End:   &end,
	})
	assert.Error(t, err)
}

func TestInvalidRangeRejected(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)

	_, err := svc.CreateSchedule(context.Background(), churchID, ministryID, "owner", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, "12:00"),
		End:         minutes(t, "12:00"),
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestInactiveVolunteerNotBookable(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)

	inactive := false
	_, err := svc.UpdateVolunteer(context.Background(), churchID, ministryID, volunteerID, "owner", UpdateVolunteerRequest{
		IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = svc.CreateSchedule(context.Background(), churchID, ministryID, "owner", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, "09:00"),
		End:         minutes(t, "10:00"),
	})
	assert.ErrorIs(t, err, ErrVolunteerInactive)
}

func TestStatusTransitions(t *testing.T) {
	_, svc, ministryID, volunteerID := setup(t)
	s := schedule(t, svc, ministryID, volunteerID, "09:00", "12:00")

	noShow := timeslot.StatusNoShow
	updated, err := svc.UpdateSchedule(context.Background(), churchID, ministryID, s.ID, "owner", UpdateScheduleRequest{
		Status: &noShow,
	})
	require.NoError(t, err)
	assert.Equal(t, timeslot.StatusNoShow, updated.Status)

	// Terminal statuses are absorbing.
	scheduled := timeslot.StatusScheduled
	_, err = svc.UpdateSchedule(context.Background(), churchID, ministryID, s.ID, "owner", UpdateScheduleRequest{
		Status: &scheduled,
	})
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestOverseerScopedToOwnCampus(t *testing.T) {
	members, svc, ministryID, volunteerID := setup(t)
	members.add("overseer", permission.RoleOverseer, strPtr(campusEast))

	// The ministry lives on the main campus; an east-campus overseer has no
	// authority over it.
	_, err := svc.CreateSchedule(context.Background(), churchID, ministryID, "overseer", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, "09:00"),
		End:         minutes(t, "10:00"),
	})
	assert.Error(t, err)

	members.add("homeOverseer", permission.RoleOverseer, strPtr(campusMain))
	_, err = svc.CreateSchedule(context.Background(), churchID, ministryID, "homeOverseer", CreateScheduleRequest{
		VolunteerID: volunteerID,
		Date:        testDate,
		Start:       minutes(t, "09:00"),
		End:         minutes(t, "10:00"),
	})
	assert.NoError(t, err)
}

func TestMemberCannotManageMinistries(t *testing.T) {
	members, svc, ministryID, _ := setup(t)
	members.add("u1", permission.RoleMember, strPtr(campusMain))

	_, err := svc.CreateMinistry(context.Background(), churchID, "u1", CreateMinistryRequest{Name: "Choir"})
	assert.Error(t, err)

	_, err = svc.AddVolunteer(context.Background(), churchID, ministryID, "u1", VolunteerRequest{Name: "Bob"})
	assert.Error(t, err)

	// Members may still browse.
	_, err = svc.ListVolunteers(context.Background(), churchID, ministryID, "u1")
	assert.NoError(t, err)
}

func TestUpdateMinistryEditsLoadedRecord(t *testing.T) {
	_, svc, ministryID, _ := setup(t)

	updated, err := svc.UpdateMinistry(context.Background(), churchID, ministryID, "owner", UpdateMinistryRequest{
		CampusID:    strPtr(campusEast),
		Name:        strPtr("Tech Team"),
		Description: strPtr("Sound and projection"),
	})
	require.NoError(t, err)
	assert.Equal(t, ministryID, updated.ID)
	assert.Equal(t, churchID, updated.ChurchID)
	assert.Equal(t, "Tech Team", updated.Name)
	require.NotNil(t, updated.CampusID)
	assert.Equal(t, campusEast, *updated.CampusID)

	got, err := svc.GetMinistry(context.Background(), churchID, ministryID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Tech Team", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Sound and projection", *got.Description)
}

func TestUpdateMinistryBlankNameRejected(t *testing.T) {
	_, svc, ministryID, _ := setup(t)

	_, err := svc.UpdateMinistry(context.Background(), churchID, ministryID, "owner", UpdateMinistryRequest{
		Name: strPtr("  "),
	})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestMinistryScopedToChurch(t *testing.T) {
	_, svc, ministryID, _ := setup(t)

	other := "99999999-9999-9999-9999-999999999999"
	_, err := svc.GetMinistry(context.Background(), other, ministryID, "owner")
	assert.Error(t, err)
}
