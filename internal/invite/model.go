package invite

import (
	"net/http"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.New(http.StatusNotFound, "invite not found")
	ErrRevoked   = apperror.New(http.StatusGone, "this invite has been revoked")
	ErrExpired   = apperror.New(http.StatusGone, "this invite has expired")
	ErrExhausted = apperror.New(http.StatusGone, "this invite has no uses left")
	// ErrCodeTaken is an internal signal from the repository; code
	// generation retries on it.
	ErrCodeTaken = apperror.New(http.StatusConflict, "invite code already exists")
)

// Invite is a redeemable code that grants member-level access to a church,
// optionally pinned to a campus.
type Invite struct {
	ID        string
	Code      string
	ChurchID  string
	CampusID  *string
	CreatedBy string
	CreatedAt time.Time
	ExpiresAt *time.Time
	MaxUses   int // 0 means unlimited
	UseCount  int
	Revoked   bool
}

// Usable reports whether the invite can still be redeemed at the given time.
func (i *Invite) Usable(now time.Time) error {
	if i.Revoked {
		return ErrRevoked
	}
	if i.ExpiresAt != nil && !now.Before(*i.ExpiresAt) {
		return ErrExpired
	}
	if i.MaxUses > 0 && i.UseCount >= i.MaxUses {
		return ErrExhausted
	}
	return nil
}

// Filter defines list options for invites.
type Filter struct {
	CampusID string
	Page     int
	PageSize int
}
