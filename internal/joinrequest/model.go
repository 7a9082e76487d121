package joinrequest

import (
	"net/http"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.New(http.StatusNotFound, "join request not found")
	ErrAlreadyPending = apperror.New(http.StatusConflict, "a pending join request already exists for this church")
	ErrAlreadyMember  = apperror.New(http.StatusConflict, "user is already a member of this church")
	ErrAlreadyDecided = apperror.New(http.StatusConflict, "join request has already been decided")
	ErrNotRequester   = apperror.New(http.StatusForbidden, "only the requester may cancel a join request")
	ErrCampusNotFound = apperror.New(http.StatusNotFound, "campus not found in this church")
)

// Status of a join request. Decisions are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type JoinRequest struct {
	ID         string
	UserID     string
	UserName   string
	ChurchID   string
	CampusID   *string
	Message    string
	Status     Status
	CreatedAt  time.Time
	ReviewedBy *string
	ReviewedAt *time.Time
}

// Campus returns the requested campus or "" for a church-wide request.
func (r *JoinRequest) Campus() string {
	if r.CampusID == nil {
		return ""
	}
	return *r.CampusID
}

type Filter struct {
	Status   Status
	CampusID string
	Page     int
	PageSize int
}
