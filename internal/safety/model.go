package safety

import (
	"fmt"
	"net/http"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

var (
	ErrMemberNotFound   = apperror.New(http.StatusNotFound, "safety team member not found")
	ErrScheduleNotFound = apperror.New(http.StatusNotFound, "safety schedule not found")
	ErrIncidentNotFound = apperror.New(http.StatusNotFound, "incident not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "name is required")
	ErrMemberInactive   = apperror.New(http.StatusConflict, "safety team member is not active and cannot be scheduled")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, "invalid schedule status")
	ErrBadTransition    = apperror.New(http.StatusConflict, "schedule status cannot change this way")
	ErrInvalidSeverity  = apperror.New(http.StatusBadRequest, "severity must be low, medium or high")
	ErrAlreadyResolved  = apperror.New(http.StatusConflict, "incident is already resolved")
	ErrCampusNotFound   = apperror.New(http.StatusNotFound, "campus not found in this church")
)

// ConflictError reports the existing shift that blocked a schedule write.
func ConflictError(b *timeslot.Booking) error {
	return apperror.New(http.StatusConflict, fmt.Sprintf(
		"member is already scheduled during this time period (%s to %s)",
		timeslot.FormatClock(b.Start), timeslot.FormatClock(b.End)))
}

// Member is a bookable safety-team subject. UserID is optional so team
// members without accounts can still be rostered by name.
type Member struct {
	ID        string
	ChurchID  string
	CampusID  *string
	UserID    *string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Campus returns the member's campus or "" for a church-wide assignment.
func (m *Member) Campus() string {
	if m.CampusID == nil {
		return ""
	}
	return *m.CampusID
}

type Schedule struct {
	ID        string
	MemberID  string
	Date      timeslot.Date
	Start     int
	End       int
	Status    timeslot.Status
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s Severity) bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

type IncidentStatus string

const (
	IncidentOpen     IncidentStatus = "open"
	IncidentResolved IncidentStatus = "resolved"
)

type Incident struct {
	ID          string
	ChurchID    string
	CampusID    *string
	ReportedBy  string
	OccurredAt  time.Time
	Severity    Severity
	Description string
	Status      IncidentStatus
	ResolvedBy  *string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// Campus returns the incident's campus or "" for a church-wide incident.
func (i *Incident) Campus() string {
	if i.CampusID == nil {
		return ""
	}
	return *i.CampusID
}

type MemberFilter struct {
	CampusID   string
	ActiveOnly bool
}

type ScheduleFilter struct {
	MemberID string
	From     timeslot.Date
	To       timeslot.Date
	Page     int
	PageSize int
}

type IncidentFilter struct {
	CampusID string
	Status   IncidentStatus
	Severity Severity
	Page     int
	PageSize int
}
