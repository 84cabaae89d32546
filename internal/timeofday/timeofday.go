// Package timeofday implements a wall-clock time within a single day and
// windows built from two such times.
package timeofday

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/apperror"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

var (
	ErrParse    = apperror.New(http.StatusBadRequest, "time must be in HH:MM format (00:00-23:59)")
	ErrOutOfDay = apperror.New(http.StatusBadRequest, "time leaves the operating day")
)

// TimeOfDay is a time within one day with minute precision, from 00:00 to
// 23:59. The zero value is midnight. 24:00 is not representable, so the
// latest a window can end is 23:59.
type TimeOfDay struct {
	minutes int
}

// Parse reads the "HH:MM" form. A single digit hour is accepted.
func Parse(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || !isDigits(hh) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || !isDigits(mm) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return New(h, m)
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// New builds a TimeOfDay from an hour (0-23) and a minute (0-59).
func New(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrParse, hour, minute)
	}
	return TimeOfDay{minutes: hour*minutesPerHour + minute}, nil
}

// FromMinutes converts minutes since midnight. It accepts 0 through 1439.
func FromMinutes(m int) (TimeOfDay, error) {
	if m < 0 || m >= minutesPerDay {
		return TimeOfDay{}, fmt.Errorf("%w: %d minutes", ErrOutOfDay, m)
	}
	return TimeOfDay{minutes: m}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (t TimeOfDay) Hour() int    { return t.minutes / minutesPerHour }
func (t TimeOfDay) Minute() int  { return t.minutes % minutesPerHour }
func (t TimeOfDay) Minutes() int { return t.minutes }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Compare returns -1 if a is before b, 0 if equal and +1 if a is after b.
func Compare(a, b TimeOfDay) int {
	switch {
	case a.minutes < b.minutes:
		return -1
	case a.minutes > b.minutes:
		return 1
	default:
		return 0
	}
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.minutes < o.minutes }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t.minutes > o.minutes }
func (t TimeOfDay) Equal(o TimeOfDay) bool  { return t.minutes == o.minutes }

// MinutesBetween returns b - a in minutes. The result is negative when b is before a.
func MinutesBetween(a, b TimeOfDay) int {
	return b.minutes - a.minutes
}

// AddMinutes shifts t by n minutes. Results outside 00:00-23:59 are rejected
// with ErrOutOfDay instead of wrapping past midnight.
func AddMinutes(t TimeOfDay, n int) (TimeOfDay, error) {
	return FromMinutes(t.minutes + n)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
