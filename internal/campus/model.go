package campus

import (
	"net/http"
	"time"

	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "campus not found")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "campus name is required")
	ErrNameTaken    = apperror.New(http.StatusConflict, "a campus with this name already exists")
)

// Campus is a physical site of a church. Memberships, ministries and safety
// records may be pinned to one campus or left church-wide.
type Campus struct {
	ID        string
	ChurchID  string
	Name      string
	Address   *string
	CreatedAt time.Time
}
