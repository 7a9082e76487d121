package ministry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "ministry not found")
	ErrVolunteerNotFound = apperror.New(http.StatusNotFound, "volunteer not found")
	ErrScheduleNotFound  = apperror.New(http.StatusNotFound, "schedule not found")
	ErrNameRequired      = apperror.New(http.StatusBadRequest, "name is required")
	ErrVolunteerInactive = apperror.New(http.StatusConflict, "volunteer is not active and cannot be scheduled")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid schedule status")
	ErrBadTransition     = apperror.New(http.StatusConflict, "schedule status cannot change this way")
	ErrCampusNotFound    = apperror.New(http.StatusNotFound, "campus not found in this church")
)

// ConflictError reports the existing booking that blocked a schedule write.
func ConflictError(b *timeslot.Booking) error {
	return apperror.New(http.StatusConflict, fmt.Sprintf(
		"volunteer is already scheduled during this time period (%s to %s)",
		timeslot.FormatClock(b.Start), timeslot.FormatClock(b.End)))
}

type Ministry struct {
	ID          string
	ChurchID    string
	CampusID    *string
	Name        string
	Description *string
	CreatedAt   time.Time
}

// Campus returns the ministry's campus or "" for a church-wide ministry.
func (m *Ministry) Campus() string {
	if m.CampusID == nil {
		return ""
	}
	return *m.CampusID
}

// Volunteer is a bookable subject. UserID is optional so congregants
// without accounts can still be rostered by name.
type Volunteer struct {
	ID         string
	MinistryID string
	UserID     *string
	Name       string
	IsActive   bool
	CreatedAt  time.Time
}

type Schedule struct {
	ID          string
	VolunteerID string
	Date        timeslot.Date
	Start       int
	End         int
	Status      timeslot.Status
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
}

type Filter struct {
	CampusID string
	Name     string
	Page     int
	PageSize int
}

type ScheduleFilter struct {
	VolunteerID string
	From        timeslot.Date
	To          timeslot.Date
	Page        int
	PageSize    int
}
