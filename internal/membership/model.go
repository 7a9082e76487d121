package membership

import (
	"net/http"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/permission"
	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
)

var (
	ErrNotMember      = apperror.New(http.StatusNotFound, "membership not found")
	ErrAlreadyMember  = apperror.New(http.StatusConflict, "user is already a member of this church")
	ErrInvalidRole    = apperror.New(http.StatusBadRequest, "invalid role")
	ErrLastOwner      = apperror.New(http.StatusConflict, "a church must retain at least one owner")
	ErrTargetOutranks = apperror.New(http.StatusForbidden, "you cannot act on a member at or above your own rank")
	ErrCampusNotFound = apperror.New(http.StatusNotFound, "campus not found in this church")
)

// Membership associates a user with exactly one church, one role and
// optionally one campus. A user holds at most one membership per church.
type Membership struct {
	ID         string
	UserID     string
	UserName   string // display name, falling back to email
	ChurchID   string
	CampusID   *string
	CampusName *string
	Role       permission.Role
	JoinedAt   time.Time
}

// Campus returns the campus ID or empty string for church-wide members.
// This is the form the permission scope wants.
func (m *Membership) Campus() string {
	if m.CampusID == nil {
		return ""
	}
	return *m.CampusID
}

// DepartureReason records why a membership ended.
type DepartureReason string

const (
	DepartureLeft    DepartureReason = "left"
	DepartureRemoved DepartureReason = "removed"
)

// Departure is the soft trace kept when a membership is destroyed.
type Departure struct {
	ID         string
	ChurchID   string
	UserID     string
	UserName   string
	Role       permission.Role
	Reason     DepartureReason
	RecordedAt time.Time
}

// Filter defines list options for members.
type Filter struct {
	CampusID string
	Role     string
	Page     int
	PageSize int
}
