package reservation

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "reservation not found")
	ErrResourceNotFound = apperror.New(http.StatusNotFound, "resource not found")
	ErrInvalidDuration  = apperror.New(http.StatusBadRequest, "duration must be a positive number of minutes")
	ErrOutOfWindow      = apperror.New(http.StatusBadRequest, "reservation must fall within the resource's available time")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "time slot already booked")
	ErrWindowExcludes   = apperror.New(http.StatusConflict, "existing reservations fall outside the new available time")
)

// Reservation is one user's booking of a resource for a span within the day.
type Reservation struct {
	ID              string
	ResourceID      string
	ResourceName    string
	Owner           string
	Interval        timeofday.Window
	DurationMinutes int
	Notes           string
	CreatedAt       time.Time
}

func (r *Reservation) BookedBy() string       { return r.Owner }
func (r *Reservation) Span() timeofday.Window { return r.Interval }

// Filter selects reservations. Results are always ordered by start time.
type Filter struct {
	ResourceID string
	Owner      string
}

// AdmitFunc decides, under the resource lock, whether a change to the parent
// may go ahead given its existing reservations.
type AdmitFunc func(parent *resource.Resource, siblings []*Reservation) error
