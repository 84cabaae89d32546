package timeofday

import (
	"fmt"
	"net/http"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/apperror"
)

var ErrEmptyWindow = apperror.New(http.StatusBadRequest, "end time must be after start time")

// Window is a half-open span [Start, End) within one day.
type Window struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewWindow validates that end is strictly after start.
func NewWindow(start, end TimeOfDay) (Window, error) {
	if !end.After(start) {
		return Window{}, fmt.Errorf("%w: %s-%s", ErrEmptyWindow, start, end)
	}
	return Window{Start: start, End: end}, nil
}

// ParseWindow parses both ends from "HH:MM" text.
func ParseWindow(start, end string) (Window, error) {
	s, err := Parse(start)
	if err != nil {
		return Window{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(s, e)
}

// WindowFrom builds the window starting at start and lasting durationMinutes.
func WindowFrom(start TimeOfDay, durationMinutes int) (Window, error) {
	end, err := AddMinutes(start, durationMinutes)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(start, end)
}

// Duration is End - Start in minutes.
func (w Window) Duration() int {
	return MinutesBetween(w.Start, w.End)
}

// Contains reports whether other lies fully inside w. Shared edges count as inside.
func (w Window) Contains(other Window) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// Overlaps reports whether the two windows share at least one minute.
// Back-to-back windows do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
