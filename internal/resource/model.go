package resource

import (
	"net/http"
	"slices"
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName          = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidWindow      = apperror.New(http.StatusBadRequest, "resource end time must be after start time")
	ErrInvalidDelta       = apperror.New(http.StatusInternalServerError, "reservation count can only change by one")
	ErrInvariantViolation = apperror.New(http.StatusInternalServerError, "reservation count would become negative")
)

// Resource is a bookable asset available during a daily window.
type Resource struct {
	ID               string
	Name             string
	Owner            string
	Window           timeofday.Window
	DurationMinutes  int
	Tags             []string
	ImageID          *string
	CreatedAt        time.Time
	LastActivityAt   time.Time
	ReservationCount int
	HasBeenReserved  bool
}

// HasTag is an exact, case-sensitive membership test.
func (r *Resource) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// Sort keys accepted by Filter.SortBy.
const (
	SortByCreatedAt      = "created_at"
	SortByLastActivityAt = "last_activity_at"
	SortByName           = "name"
)

// Filter defines parameters for listing resources.
// A zero PageSize returns every match.
type Filter struct {
	Owner     string
	Tag       string
	NameQuery string
	Fits      *timeofday.Window // declared window must contain this interval
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
