package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

type slot struct {
	owner string
	span  timeofday.Window
}

func (s slot) BookedBy() string       { return s.owner }
func (s slot) Span() timeofday.Window { return s.span }

func newSlot(t *testing.T, owner, start, end string) slot {
	t.Helper()
	w, err := timeofday.ParseWindow(start, end)
	require.NoError(t, err)
	return slot{owner: owner, span: w}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestOperatingDay(t *testing.T) {
	f := New(DefaultOffset)
	assert.Equal(t, time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC), f.OperatingDay(at(2, 0)))
}

func TestIsActive(t *testing.T) {
	f := New(DefaultOffset)
	s := newSlot(t, "a", "10:00", "11:00")

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		// now - 4h is 06:00, end 11:00 is after it.
		{name: "well before end", now: at(10, 0), want: true},
		// now - 4h is 11:00, equal to end.
		{name: "exactly at shifted end", now: at(15, 0), want: false},
		{name: "one minute before shifted end", now: at(14, 59), want: true},
		{name: "later the same day", now: at(20, 0), want: false},
		// now - 4h falls on the previous date at 21:00, end 11:00 of that date is past.
		{name: "after midnight", now: at(1, 0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsActive(s, tt.now))
		})
	}
}

func TestIsActiveIsMonotonicWithinADay(t *testing.T) {
	f := New(DefaultOffset)
	s := newSlot(t, "a", "12:00", "13:30")

	seenInactive := false
	for m := 4 * 60; m < 24*60; m += 7 {
		active := f.IsActive(s, at(m/60, m%60))
		if seenInactive {
			assert.False(t, active, "reactivated at minute %d", m)
		}
		if !active {
			seenInactive = true
		}
	}
	assert.True(t, seenInactive)
}

func TestZeroOffset(t *testing.T) {
	f := New(0)
	s := newSlot(t, "a", "10:00", "11:00")
	assert.True(t, f.IsActive(s, at(10, 59)))
	assert.False(t, f.IsActive(s, at(11, 0)))
}

func TestOwnedAndActive(t *testing.T) {
	f := New(DefaultOffset)
	items := []slot{
		newSlot(t, "alice", "18:00", "19:00"),
		newSlot(t, "bob", "18:00", "19:00"),
		newSlot(t, "alice", "08:00", "09:00"),
		newSlot(t, "alice", "20:00", "21:00"),
	}

	got := OwnedAndActive(f, items, "alice", at(14, 0))
	require.Len(t, got, 2)
	assert.Equal(t, items[0], got[0])
	assert.Equal(t, items[3], got[1])

	assert.Empty(t, OwnedAndActive(f, items, "", at(14, 0)))
	assert.Len(t, Active(f, items, at(14, 0)), 3)
}

func TestFitsAndConflicts(t *testing.T) {
	f := New(DefaultOffset)
	window, _ := timeofday.ParseWindow("09:00", "17:00")
	inside, _ := timeofday.ParseWindow("10:00", "11:00")
	outside, _ := timeofday.ParseWindow("16:30", "17:30")

	assert.True(t, f.Fits(window, inside))
	assert.True(t, f.Fits(window, window))
	assert.False(t, f.Fits(window, outside))

	existing := []slot{
		newSlot(t, "a", "09:00", "10:00"),
		newSlot(t, "b", "10:30", "12:00"),
	}
	got := Conflicts(existing, inside)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].owner)

	backToBack, _ := timeofday.ParseWindow("12:00", "13:00")
	assert.Empty(t, Conflicts(existing, backToBack))
}
