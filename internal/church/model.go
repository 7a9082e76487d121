package church

import (
	"net/http"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "church not found")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "church name is required")
)

// Church is the tenant root: every campus, membership, ministry and safety
// record hangs off exactly one church.
type Church struct {
	ID          string
	Name        string
	Description *string
	LogoPath    *string
	CreatedAt   time.Time
	IsActive    bool
}

// Filter defines list options for churches.
type Filter struct {
	Name     string // case-insensitive substring match
	Page     int
	PageSize int
}
