package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/availability"
	"github.com/nekogravitycat/resource-share-backend/internal/notify"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
	"github.com/nekogravitycat/resource-share-backend/internal/reservation"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

type fixture struct {
	resources    resource.Service
	reservations reservation.Service
	notifier     *recordingNotifier
	wf           Workflow
	room         *resource.Resource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	resourceRepo := resource.NewMemoryRepository()
	resources := resource.NewService(resourceRepo, resource.WithLogger(log))
	reservations := reservation.NewService(
		reservation.NewMemoryRepository(resourceRepo),
		availability.New(availability.DefaultOffset),
		log,
	)
	n := &recordingNotifier{}

	room, err := resources.Create(context.Background(), resource.CreateRequest{
		Name:  "Room",
		Start: timeofday.MustParse("09:00"),
		End:   timeofday.MustParse("17:00"),
		Owner: alice,
	})
	require.NoError(t, err)

	return &fixture{
		resources:    resources,
		reservations: reservations,
		notifier:     n,
		wf:           NewWorkflow(resources, reservations, n, log),
		room:         room,
	}
}

func TestBookResourceNotifiesOnSuccess(t *testing.T) {
	f := newFixture(t)

	r, err := f.wf.BookResource(context.Background(), BookRequest{
		ResourceID:      f.room.ID,
		Owner:           bob,
		Start:           timeofday.MustParse("10:00"),
		DurationMinutes: 60,
		Notes:           "team sync",
	})
	require.NoError(t, err)
	assert.Equal(t, "team sync", r.Notes)

	require.Len(t, f.notifier.sent, 1)
	msg := f.notifier.sent[0]
	assert.Equal(t, bob, msg.Recipient)
	assert.Equal(t, r.ID, msg.ReservationID)
	assert.Equal(t, "Room", msg.ResourceName)
	assert.Equal(t, "10:00", msg.Start)
	assert.Equal(t, 60, msg.DurationMinutes)

	res, err := f.resources.GetByID(context.Background(), f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ReservationCount)
}

func TestBookResourceFailureSkipsNotifier(t *testing.T) {
	f := newFixture(t)

	_, err := f.wf.BookResource(context.Background(), BookRequest{
		ResourceID:      f.room.ID,
		Owner:           bob,
		Start:           timeofday.MustParse("16:30"),
		DurationMinutes: 60,
	})
	assert.ErrorIs(t, err, reservation.ErrOutOfWindow)
	assert.Empty(t, f.notifier.sent)
}

func TestBookResourceSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.Join(notify.ErrNotify, errors.New("smtp down"))

	r, err := f.wf.BookResource(context.Background(), BookRequest{
		ResourceID:      f.room.ID,
		Owner:           bob,
		Start:           timeofday.MustParse("10:00"),
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.NotNil(t, r)

	stored, err := f.reservations.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, stored.ID)
}

func TestEditResourceCascadesRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.wf.BookResource(ctx, BookRequest{
		ResourceID: f.room.ID, Owner: bob, Start: timeofday.MustParse("10:00"), DurationMinutes: 30,
	})
	require.NoError(t, err)

	name := "Board room"
	_, err = f.wf.EditResource(ctx, f.room.ID, bob, resource.UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	got, err := f.reservations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Room", got.ResourceName)

	updated, err := f.wf.EditResource(ctx, f.room.ID, alice, resource.UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Board room", updated.Name)

	got, err = f.reservations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Board room", got.ResourceName)
}

func TestDeleteReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.wf.BookResource(ctx, BookRequest{
		ResourceID: f.room.ID, Owner: bob, Start: timeofday.MustParse("10:00"), DurationMinutes: 30,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.wf.DeleteReservation(ctx, r.ID, alice), auth.ErrForbidden)
	require.NoError(t, f.wf.DeleteReservation(ctx, r.ID, bob))

	res, err := f.resources.GetByID(ctx, f.room.ID)
	require.NoError(t, err)
	assert.Zero(t, res.ReservationCount)
}

func TestEditResourceKeepsReservationsInsideWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.wf.BookResource(ctx, BookRequest{
		ResourceID: f.room.ID, Owner: bob, Start: timeofday.MustParse("15:00"), DurationMinutes: 60,
	})
	require.NoError(t, err)

	end := timeofday.MustParse("12:00")
	name := "Small room"
	_, err = f.wf.EditResource(ctx, f.room.ID, alice, resource.UpdateRequest{Name: &name, End: &end})
	assert.ErrorIs(t, err, reservation.ErrWindowExcludes)

	res, err := f.resources.GetByID(ctx, f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00-17:00", res.Window.String(), "rejected edit leaves the window alone")
	assert.Equal(t, "Room", res.Name)
	got, err := f.reservations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Room", got.ResourceName)
	assert.True(t, res.Window.Contains(got.Interval))

	t.Run("shrinking around the reservation is fine", func(t *testing.T) {
		start := timeofday.MustParse("15:00")
		end := timeofday.MustParse("16:00")
		updated, err := f.wf.EditResource(ctx, f.room.ID, alice, resource.UpdateRequest{Start: &start, End: &end})
		require.NoError(t, err)
		assert.Equal(t, "15:00-16:00", updated.Window.String())
		assert.Equal(t, 60, updated.DurationMinutes)
		assert.Equal(t, 1, updated.ReservationCount)
	})

	t.Run("freed once the reservation is gone", func(t *testing.T) {
		require.NoError(t, f.wf.DeleteReservation(ctx, r.ID, bob))

		start := timeofday.MustParse("09:00")
		end := timeofday.MustParse("12:00")
		updated, err := f.wf.EditResource(ctx, f.room.ID, alice, resource.UpdateRequest{Start: &start, End: &end})
		require.NoError(t, err)
		assert.Equal(t, "09:00-12:00", updated.Window.String())
	})
}

func TestConcurrentRenameAndBookingAgreeOnName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const bookings = 20
	var wg sync.WaitGroup
	for i := 0; i < bookings; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.wf.BookResource(ctx, BookRequest{
				ResourceID: f.room.ID, Owner: bob, Start: timeofday.MustParse("10:00"), DurationMinutes: 30,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		name := "Renamed room"
		_, err := f.wf.EditResource(ctx, f.room.ID, alice, resource.UpdateRequest{Name: &name})
		assert.NoError(t, err)
	}()
	wg.Wait()

	all, err := f.reservations.ListForResource(ctx, f.room.ID)
	require.NoError(t, err)
	require.Len(t, all, bookings)
	for _, r := range all {
		assert.Equal(t, "Renamed room", r.ResourceName)
	}
}
