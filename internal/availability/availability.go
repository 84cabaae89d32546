// Package availability decides which reservations still matter and whether a
// requested interval can be carved out of a resource's window.
package availability

import (
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

// DefaultOffset shifts the operating day so that bookings running past
// midnight still count for the day they started on.
const DefaultOffset = 4 * time.Hour

// Booking is anything with an owner and a span of time within a day.
type Booking interface {
	BookedBy() string
	Span() timeofday.Window
}

type Filter struct {
	Offset        time.Duration
	RejectOverlap bool
}

func New(offset time.Duration) Filter {
	return Filter{Offset: offset}
}

// OperatingDay is the instant used to pick the calendar date of "today".
func (f Filter) OperatingDay(now time.Time) time.Time {
	return now.Add(-f.Offset)
}

// IsActive reports whether b has not yet ended. The end time of day is placed
// on the operating day's date in now's location and compared, strictly, with
// now shifted back by the offset.
func (f Filter) IsActive(b Booking, now time.Time) bool {
	ref := f.OperatingDay(now)
	end := b.Span().End
	y, m, d := ref.Date()
	endAt := time.Date(y, m, d, end.Hour(), end.Minute(), 0, 0, now.Location())
	return endAt.After(ref)
}

// Fits reports whether interval lies inside window.
func (f Filter) Fits(window, interval timeofday.Window) bool {
	return window.Contains(interval)
}

// OwnedAndActive keeps the items owned by userID that are still active.
// Input order is preserved.
func OwnedAndActive[T Booking](f Filter, items []T, userID string, now time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.BookedBy() != userID {
			continue
		}
		if f.IsActive(item, now) {
			out = append(out, item)
		}
	}
	return out
}

// Active keeps the items that are still active, preserving order.
func Active[T Booking](f Filter, items []T, now time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.IsActive(item, now) {
			out = append(out, item)
		}
	}
	return out
}

// Conflicts lists the existing bookings sharing at least one minute with
// candidate. Back-to-back bookings do not conflict.
func Conflicts[T Booking](existing []T, candidate timeofday.Window) []T {
	var out []T
	for _, item := range existing {
		if item.Span().Overlaps(candidate) {
			out = append(out, item)
		}
	}
	return out
}
