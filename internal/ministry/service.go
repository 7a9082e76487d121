package ministry

import (
	"context"
	"errors"
	"strings"

	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/permission"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

// CampusDirectory answers whether a campus belongs to a church.
type CampusDirectory interface {
	ExistsInChurch(ctx context.Context, churchID, campusID string) (bool, error)
}

type CreateMinistryRequest struct {
	CampusID    *string
	Name        string
	Description *string
}

type UpdateMinistryRequest struct {
	CampusID    *string
	Name        *string
	Description *string
}

type VolunteerRequest struct {
	UserID *string
	Name   string
}

type UpdateVolunteerRequest struct {
	Name     *string
	IsActive *bool
}

type CreateScheduleRequest struct {
	VolunteerID string
	Date        timeslot.Date
	Start       int
	End         int
	Notes       string
}

type UpdateScheduleRequest struct {
	VolunteerID *string
	Date        *timeslot.Date
	Start       *int
	End         *int
	Status      *timeslot.Status
	Notes       *string
}

type Service interface {
	CreateMinistry(ctx context.Context, churchID, actorUserID string, req CreateMinistryRequest) (*Ministry, error)
	GetMinistry(ctx context.Context, churchID, id, actorUserID string) (*Ministry, error)
	ListMinistries(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Ministry, int, error)
	UpdateMinistry(ctx context.Context, churchID, id, actorUserID string, req UpdateMinistryRequest) (*Ministry, error)
	DeleteMinistry(ctx context.Context, churchID, id, actorUserID string) error

	AddVolunteer(ctx context.Context, churchID, ministryID, actorUserID string, req VolunteerRequest) (*Volunteer, error)
	ListVolunteers(ctx context.Context, churchID, ministryID, actorUserID string) ([]*Volunteer, error)
	UpdateVolunteer(ctx context.Context, churchID, ministryID, volunteerID, actorUserID string, req UpdateVolunteerRequest) (*Volunteer, error)
	RemoveVolunteer(ctx context.Context, churchID, ministryID, volunteerID, actorUserID string) error

	CreateSchedule(ctx context.Context, churchID, ministryID, actorUserID string, req CreateScheduleRequest) (*Schedule, error)
	ListSchedules(ctx context.Context, churchID, ministryID, actorUserID string, filter ScheduleFilter) ([]*Schedule, int, error)
	UpdateSchedule(ctx context.Context, churchID, ministryID, scheduleID, actorUserID string, req UpdateScheduleRequest) (*Schedule, error)
	DeleteSchedule(ctx context.Context, churchID, ministryID, scheduleID, actorUserID string) error
}

type service struct {
	repo        Repository
	memberships membership.Service
	campuses    CampusDirectory
}

// NewService creates a new ministry service.
func NewService(repo Repository, memberships membership.Service, campuses CampusDirectory) Service {
	return &service{repo: repo, memberships: memberships, campuses: campuses}
}

func (s *service) CreateMinistry(ctx context.Context, churchID, actorUserID string, req CreateMinistryRequest) (*Ministry, error) {
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
	if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageMinistries, targetCampus); err != nil {
		return nil, err
	}

	m := &Ministry{
		ChurchID:    churchID,
		CampusID:    req.CampusID,
		Name:        name,
		Description: req.Description,
	}
	if err := s.repo.CreateMinistry(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) GetMinistry(ctx context.Context, churchID, id, actorUserID string) (*Ministry, error) {
	if _, err := s.memberships.GetForUser(ctx, churchID, actorUserID); err != nil {
		return nil, membership.ErrActorNotMember
	}
	return s.ministryInChurch(ctx, churchID, id)
}

func (s *service) ListMinistries(ctx context.Context, churchID, actorUserID string, filter Filter) ([]*Ministry, int, error) {
	if _, err := s.memberships.GetForUser(ctx, churchID, actorUserID); err != nil {
		return nil, 0, membership.ErrActorNotMember
	}
	return s.repo.ListMinistries(ctx, churchID, filter)
}

func (s *service) UpdateMinistry(ctx context.Context, churchID, id, actorUserID string, req UpdateMinistryRequest) (*Ministry, error) {
	if _, err := s.authorizeManage(ctx, churchID, id, actorUserID, permission.CapManageMinistries); err != nil {
		return nil, err
	}
	m, err := s.ministryInChurch(ctx, churchID, id)
	if err != nil {
		return nil, err
	}

	if req.CampusID != nil {
		// Moving a ministry between campuses needs authority over the
		// destination as well.
		if err := s.validateCampus(ctx, churchID, req.CampusID); err != nil {
			return nil, err
		}
		if _, err := s.memberships.Authorize(ctx, churchID, actorUserID, permission.CapManageMinistries, *req.CampusID); err != nil {
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
	if req.Description != nil {
		m.Description = req.Description
	}

	if err := s.repo.UpdateMinistry(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) DeleteMinistry(ctx context.Context, churchID, id, actorUserID string) error {
	if _, err := s.authorizeManage(ctx, churchID, id, actorUserID, permission.CapManageMinistries); err != nil {
		return err
	}
	return s.repo.DeleteMinistry(ctx, id)
}

func (s *service) AddVolunteer(ctx context.Context, churchID, ministryID, actorUserID string, req VolunteerRequest) (*Volunteer, error) {
	if _, err := s.authorizeManage(ctx, churchID, ministryID, actorUserID, permission.CapManageVolunteers); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	v := &Volunteer{
		MinistryID: ministryID,
		UserID:     req.UserID,
		Name:       name,
		IsActive:   true,
	}
	if err := s.repo.CreateVolunteer(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) ListVolunteers(ctx context.Context, churchID, ministryID, actorUserID string) ([]*Volunteer, error) {
	if _, err := s.memberships.GetForUser(ctx, churchID, actorUserID); err != nil {
		return nil, membership.ErrActorNotMember
	}
	if _, err := s.ministryInChurch(ctx, churchID, ministryID); err != nil {
		return nil, err
	}
	return s.repo.ListVolunteers(ctx, ministryID)
}

func (s *service) UpdateVolunteer(ctx context.Context, churchID, ministryID, volunteerID, actorUserID string, req UpdateVolunteerRequest) (*Volunteer, error) {
	if _, err := s.authorizeManage(ctx, churchID, ministryID, actorUserID, permission.CapManageVolunteers); err != nil {
		return nil, err
	}

	v, err := s.volunteerInMinistry(ctx, ministryID, volunteerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		v.Name = name
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateVolunteer(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) RemoveVolunteer(ctx context.Context, churchID, ministryID, volunteerID, actorUserID string) error {
	if _, err := s.authorizeManage(ctx, churchID, ministryID, actorUserID, permission.CapManageVolunteers); err != nil {
		return err
	}
	if _, err := s.volunteerInMinistry(ctx, ministryID, volunteerID); err != nil {
		return err
	}
	return s.repo.DeleteVolunteer(ctx, volunteerID)
}

func (s *service) CreateSchedule(ctx context.Context, churchID, ministryID, actorUserID string, req CreateScheduleRequest) (*Schedule, error) {
	actor, err := s.authorizeManage(ctx, churchID, ministryID, actorUserID, permission.CapCreateSchedules)
	if err != nil {
		return nil, err
	}

	if req.Start >= req.End {
		return nil, ErrInvalidTimeRange
	}

	v, err := s.volunteerInMinistry(ctx, ministryID, req.VolunteerID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, ErrVolunteerInactive
	}

	if err := s.checkConflict(ctx, v.ID, req.Date, req.Start, req.End, ""); err != nil {
		return nil, err
	}

	sched := &Schedule{
		VolunteerID: v.ID,
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End,
		Status:      timeslot.StatusScheduled,
		Notes:       req.Notes,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *service) ListSchedules(ctx context.Context, churchID, ministryID, actorUserID string, filter ScheduleFilter) ([]*Schedule, int, error) {
	if _, err := s.memberships.GetForUser(ctx, churchID, actorUserID); err != nil {
		return nil, 0, membership.ErrActorNotMember
	}
	if _, err := s.ministryInChurch(ctx, churchID, ministryID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListSchedules(ctx, ministryID, filter)
}

func (s *service) UpdateSchedule(ctx context.Context, churchID, ministryID, scheduleID, actorUserID string, req UpdateScheduleRequest) (*Schedule, error) {
	if _, err := s.authorizeManage(ctx, churchID, ministryID, actorUserID, permission.CapUpdateSchedules); err != nil {
		return nil, err
	}

	sched, err := s.repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.volunteerInMinistry(ctx, ministryID, sched.VolunteerID); err != nil {
		return nil, ErrScheduleNotFound
	}

	slotChanged := false
	if req.VolunteerID != nil && *req.VolunteerID != sched.VolunteerID {
		v, err := s.volunteerInMinistry(ctx, ministryID, *req.VolunteerID)
		if err != nil {
			return nil, err
		}
		if !v.IsActive {
			return nil, ErrVolunteerInactive
		}
		sched.VolunteerID = v.ID
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
		if !timeslot.ValidStatus(timeslot.KindMinistry, *req.Status) {
			return nil, ErrInvalidStatus
		}
		if !timeslot.CanTransition(timeslot.KindMinistry, sched.Status, *req.Status) {
			return nil, ErrBadTransition
		}
		sched.Status = *req.Status
	}

	if sched.Start >= sched.End {
		return nil, ErrInvalidTimeRange
	}
	if slotChanged && timeslot.IsActive(sched.Status) {
		if err := s.checkConflict(ctx, sched.VolunteerID, sched.Date, sched.Start, sched.End, sched.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateSchedule(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *service) DeleteSchedule(ctx context.Context, churchID, ministryID, scheduleID, actorUserID string) error {
	if _, err := s.authorizeManage(ctx, churchID, ministryID, actorUserID, permission.CapDeleteSchedules); err != nil {
		return err
	}

	sched, err := s.repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	if _, err := s.volunteerInMinistry(ctx, ministryID, sched.VolunteerID); err != nil {
		return ErrScheduleNotFound
	}
	return s.repo.DeleteSchedule(ctx, scheduleID)
}

func (s *service) checkConflict(ctx context.Context, volunteerID string, date timeslot.Date, start, end int, excludeID string) error {
	candidates, err := s.repo.ListForVolunteerDay(ctx, volunteerID, date)
	if err != nil {
		return err
	}
	hit, err := timeslot.FirstConflict(volunteerID, date, start, end, candidates, excludeID)
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

func (s *service) authorizeManage(ctx context.Context, churchID, ministryID, actorUserID string, capability permission.Capability) (*membership.Membership, error) {
	m, err := s.ministryInChurch(ctx, churchID, ministryID)
	if err != nil {
		return nil, err
	}
	return s.memberships.Authorize(ctx, churchID, actorUserID, capability, m.Campus())
}

func (s *service) ministryInChurch(ctx context.Context, churchID, id string) (*Ministry, error) {
	m, err := s.repo.GetMinistry(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ChurchID != churchID {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *service) volunteerInMinistry(ctx context.Context, ministryID, volunteerID string) (*Volunteer, error) {
	v, err := s.repo.GetVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	if v.MinistryID != ministryID {
		return nil, ErrVolunteerNotFound
	}
	return v, nil
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
