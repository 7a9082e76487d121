package safety

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

// CampusDirectory answers whether a campus belongs to a church.
type CampusDirectory interface {
	ExistsInChurch(ctx context.Context, churchID, campusID string) (bool, error)
}

type MemberRequest struct {
	CampusID *string
	UserID   *string
	Name     string
}

type UpdateMemberRequest struct {
	CampusID *string
	Name     *string
	IsActive *bool
}

type CreateScheduleRequest struct {
	MemberID string
	Date     timeslot.Date
	Start    int
	End      int
	Notes    string
}

type UpdateScheduleRequest struct {
	MemberID *string
	Date     *timeslot.Date
	Start    *int
	End      *int
	Status   *timeslot.Status
	Notes    *string
}

type IncidentRequest struct {
	CampusID    *string
	OccurredAt  time.Time
	Severity    Severity
	Description string
}

type Service interface {
	AddMember(ctx context.Context, churchID, actorUserID string, req MemberRequest) (*Member, error)
	ListMembers(ctx context.Context, churchID, actorUserID string, filter MemberFilter) ([]*Member, error)
	UpdateMember(ctx context.Context, churchID, memberID, actorUserID string, req UpdateMemberRequest) (*Member, error)
	RemoveMember(ctx context.Context, churchID, memberID, actorUserID string) error

	CreateSchedule(ctx context.Context, churchID, actorUserID string, req CreateScheduleRequest) (*Schedule, error)
	ListSchedules(ctx context.Context, churchID, actorUserID string, filter ScheduleFilter) ([]*Schedule, int, error)
	UpdateSchedule(ctx context.Context, churchID, scheduleID, actorUserID string, req UpdateScheduleRequest) (*Schedule, error)
	DeleteSchedule(ctx context.Context, churchID, scheduleID, actorUserID string) error

	ReportIncident(ctx context.Context, churchID, actorUserID string, req IncidentRequest) (*Incident, error)
	GetIncident(ctx context.Context, churchID, id, actorUserID string) (*Incident, error)
	ListIncidents(ctx context.Context, churchID, actorUserID string, filter IncidentFilter) ([]*Incident, int, error)
	ResolveIncident(ctx context.Context, churchID, id, actorUserID string) (*Incident, error)
}

type service struct {
	repo        Repository
	memberships membership.Service
	campuses    CampusDirectory
}

// NewService creates a new safety service.
func NewService(repo Repository, memberships membership.Service, campuses CampusDirectory) Service {
	return &service{repo: repo, memberships: memberships, campuses: campuses}
}

func (s *service) AddMember(ctx context.Context, churchID, actorUserID string, req MemberRequest) (*Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.validateCampus(ctx, churchID, req.CampusID); err != nil {
		return nil, err
	}

	targetCampus := ""
	if req.CampusID != nil {
		targetCampus = *req.CampusID
	}
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageSafetyTeam, targetCampus); err != nil {
		return nil, err
	}

	m := &Member{
		ChurchID: churchID,
		CampusID: req.CampusID,
		UserID:   req.UserID,
		Name:     name,
		IsActive: true,
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListMembers(ctx context.Context, churchID, actorUserID string, filter MemberFilter) ([]*Member, error) {
	if _, err := s.memberships.GetForUser(ctx, churchID, actorUserID); err != nil {
		return nil, membership.ErrActorNotMember
	}
	return s.repo.ListMembers(ctx, churchID, filter)
}

func (s *service) UpdateMember(ctx context.Context, churchID, memberID, actorUserID string, req UpdateMemberRequest) (*Member, error) {
	m, err := s.memberInChurch(ctx, churchID, memberID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageSafetyTeam, m.Campus()); err != nil {
		return nil, err
	}

	if req.CampusID != nil {
		// Moving a member between campuses needs authority over the
		// destination as well.
		if err := s.validateCampus(ctx, churchID, req.CampusID); err != nil {
			return nil, err
		}
		if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageSafetyTeam, *req.CampusID); err != nil {
			return nil, err
		}
		m.CampusID = req.CampusID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		m.Name = name
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) RemoveMember(ctx context.Context, churchID, memberID, actorUserID string) error {
	m, err := s.memberInChurch(ctx, churchID, memberID)
	if err != nil {
		return err
	}
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageSafetyTeam, m.Campus()); err != nil {
		return err
	}
	return s.repo.DeleteMember(ctx, memberID)
}

func (s *service) CreateSchedule(ctx context.Context, churchID, actorUserID string, req CreateScheduleRequest) (*Schedule, error) {
	m, err := s.memberInChurch(ctx, churchID, req.MemberID)
	if err != nil {
		return nil, err
	}
	actor, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapCreateSafetySchedules, m.Campus())
	if err != nil {
		return nil, err
	}

	if req.Start >= req.End {
		return nil, ErrInvalidTimeRange
	}
	if !m.IsActive {
		return nil, ErrMemberInactive
	}

	if err := s.checkConflict(ctx, m.ID, req.Date, req.Start, req.End, ""); err != nil {
		return nil, err
	}

	sched := &Schedule{
		MemberID:  m.ID,
		Date:      req.Date,
		Start:     req.Start,
		End:       req.End,
		Status:    timeslot.StatusScheduled,
		Notes:     req.Notes,
		CreatedBy: actor.UserID,
	}
	if err := s.repo.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *service) ListSchedules(ctx context.Context, churchID, actorUserID string, filter ScheduleFilter) ([]*Schedule, int, error) {
	if _, err := s.memberships.GetForUser(ctx, churchID, actorUserID); err != nil {
		return nil, 0, membership.ErrActorNotMember
	}
	return s.repo.ListSchedules(ctx, churchID, filter)
}

func (s *service) UpdateSchedule(ctx context.Context, churchID, scheduleID, actorUserID string, req UpdateScheduleRequest) (*Schedule, error) {
	sched, err := s.repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	m, err := s.memberInChurch(ctx, churchID, sched.MemberID)
	if err != nil {
		return nil, ErrScheduleNotFound
	}
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapUpdateSafetySchedules, m.Campus()); err != nil {
		return nil, err
	}

	slotChanged := false
	if req.MemberID != nil && *req.MemberID != sched.MemberID {
		next, err := s.memberInChurch(ctx, churchID, *req.MemberID)
		if err != nil {
			return nil, err
		}
		if !next.IsActive {
			return nil, ErrMemberInactive
		}
		sched.MemberID = next.ID
		slotChanged = true
	}
	if req.Date != nil && *req.Date != sched.Date {
		sched.Date = *req.Date
		slotChanged = true
	}
	if req.Start != nil && *req.Start != sched.Start {
		sched.Start = *req.Start
		slotChanged = true
	}
	if req.End != nil && *req.End != sched.End {
		sched.End = *req.End
		slotChanged = true
	}
	if req.Notes != nil {
		sched.Notes = *req.Notes
	}
	if req.Status != nil && *req.Status != sched.Status {
		if !timeslot.ValidStatus(timeslot.KindSafety, *req.Status) {
			return nil, ErrInvalidStatus
		}
		if !timeslot.CanTransition(timeslot.KindSafety, sched.Status, *req.Status) {
			return nil, ErrBadTransition
		}
		sched.Status = *req.Status
	}

	if sched.Start >= sched.End {
		return nil, ErrInvalidTimeRange
	}
	if slotChanged && timeslot.IsActive(sched.Status) {
		if err := s.checkConflict(ctx, sched.MemberID, sched.Date, sched.Start, sched.End, sched.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *service) DeleteSchedule(ctx context.Context, churchID, scheduleID, actorUserID string) error {
	sched, err := s.repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	m, err := s.memberInChurch(ctx, churchID, sched.MemberID)
	if err != nil {
		return ErrScheduleNotFound
	}
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapDeleteSafetySchedules, m.Campus()); err != nil {
		return err
	}
	return s.repo.DeleteSchedule(ctx, scheduleID)
}

func (s *service) ReportIncident(ctx context.Context, churchID, actorUserID string, req IncidentRequest) (*Incident, error) {
	if !ValidSeverity(req.Severity) {
		return nil, ErrInvalidSeverity
	}
	if err := s.validateCampus(ctx, churchID, req.CampusID); err != nil {
		return nil, err
	}

	targetCampus := ""
	if req.CampusID != nil {
		targetCampus = *req.CampusID
	}
	actor, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageIncidents, targetCampus)
	if err != nil {
		return nil, err
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	i := &Incident{
		ChurchID:    churchID,
		CampusID:    req.CampusID,
		ReportedBy:  actor.UserID,
		OccurredAt:  occurredAt,
		Severity:    req.Severity,
		Description: req.Description,
	}
	if err := s.repo.CreateIncident(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) GetIncident(ctx context.Context, churchID, id, actorUserID string) (*Incident, error) {
	i, err := s.incidentInChurch(ctx, churchID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapViewIncidents, i.Campus()); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *service) ListIncidents(ctx context.Context, churchID, actorUserID string, filter IncidentFilter) ([]*Incident, int, error) {
	actor, err := s.memberships.GetForUser(ctx, churchID, actorUserID)
	if err != nil {
		return nil, 0, membership.ErrActorNotMember
	}

	// Owners browse everything; scoped viewers see only their own campus.
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapViewIncidents, actor.Campus()); err != nil {
		return nil, 0, err
	}
	if actor.Role != permission.RoleOwner {
		filter.CampusID = actor.Campus()
	}

	return s.repo.ListIncidents(ctx, churchID, filter)
}

func (s *service) ResolveIncident(ctx context.Context, churchID, id, actorUserID string) (*Incident, error) {
	i, err := s.incidentInChurch(ctx, churchID, id)
	if err != nil {
		return nil, err
	}
	if i.Status != IncidentOpen {
		return nil, ErrAlreadyResolved
	}
	actor, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageIncidents, i.Campus())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Resolve(ctx, i.ID, actor.UserID); err != nil {
		return nil, err
	}
	return s.repo.GetIncident(ctx, i.ID)
}

func (s *service) checkConflict(ctx context.Context, memberID string, date timeslot.Date, start, end int, excludeID string) error {
	candidates, err := s.repo.ListForMemberDay(ctx, memberID, date)
	if err != nil {
		return err
	}
	hit, err := timeslot.FirstConflict(memberID, date, start, end, candidates, excludeID)
	if err != nil {
		if errors.Is(err, timeslot.ErrInvalidRange) {
			return ErrInvalidTimeRange
		}
		return err
	}
	if hit != nil {
		return ConflictError(hit)
	}
	return nil
}

func (s *service) memberInChurch(ctx context.Context, churchID, id string) (*Member, error) {
	m, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ChurchID != churchID {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

func (s *service) incidentInChurch(ctx context.Context, churchID, id string) (*Incident, error) {
	i, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if i.ChurchID != churchID {
		return nil, ErrIncidentNotFound
	}
	return i, nil
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
