// Package booking coordinates the stores for the user-facing booking flows
// and sends confirmations once a reservation is stored.
package booking

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nekogravitycat/resource-share-backend/internal/notify"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
	"github.com/nekogravitycat/resource-share-backend/internal/reservation"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

type BookRequest struct {
	ResourceID      string
	Owner           string
	Start           timeofday.TimeOfDay
	DurationMinutes int
	Notes           string
}

type Workflow interface {
	BookResource(ctx context.Context, req BookRequest) (*reservation.Reservation, error)
	EditResource(ctx context.Context, resourceID, actingUser string, req resource.UpdateRequest) (*resource.Resource, error)
	DeleteReservation(ctx context.Context, reservationID, actingUser string) error
}

type workflow struct {
	resources    resource.Service
	reservations reservation.Service
	notifier     notify.Notifier
	log          *slog.Logger
}

func NewWorkflow(resources resource.Service, reservations reservation.Service, notifier notify.Notifier, log *slog.Logger) Workflow {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	return &workflow{
		resources:    resources,
		reservations: reservations,
		notifier:     notifier,
		log:          log,
	}
}

func (w *workflow) BookResource(ctx context.Context, req BookRequest) (*reservation.Reservation, error) {
	r, err := w.reservations.Create(ctx, reservation.CreateRequest{
		ResourceID:      req.ResourceID,
		Owner:           req.Owner,
		Start:           req.Start,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, err
	}

	msg := notify.Confirmation(r.Owner, r.ID, r.ResourceID, r.ResourceName, r.Interval.Start.String(), r.DurationMinutes)
	if err := w.notifier.Notify(ctx, msg); err != nil {
		// The reservation stands even when the confirmation is lost.
		logger.FromContext(ctx, w.log).Warn("booking confirmation not delivered",
			"operation", "booking.book", "reservation_id", r.ID, "recipient", r.Owner,
			"error", err, "notify_error", errors.Is(err, notify.ErrNotify))
	}
	return r, nil
}

func (w *workflow) EditResource(ctx context.Context, resourceID, actingUser string, req resource.UpdateRequest) (*resource.Resource, error) {
	edited, err := w.resources.PrepareUpdate(ctx, resourceID, req, actingUser)
	if err != nil {
		return nil, err
	}

	// The window check, the resource write and the rename cascade share one
	// lock on the resource.
	if err := w.reservations.ApplyResourceEdit(ctx, edited); err != nil {
		if errors.Is(err, reservation.ErrWindowExcludes) {
			logger.FromContext(ctx, w.log).Info("resource edit rejected",
				"operation", "booking.edit_resource", "resource_id", resourceID, "error", err)
		}
		return nil, err
	}
	return edited, nil
}

func (w *workflow) DeleteReservation(ctx context.Context, reservationID, actingUser string) error {
	return w.reservations.Delete(ctx, reservationID, actingUser)
}
