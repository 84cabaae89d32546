package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/availability"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

type CreateRequest struct {
	ResourceID      string
	Owner           string
	Start           timeofday.TimeOfDay
	DurationMinutes int
	Notes           string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	ListAll(ctx context.Context) ([]*Reservation, error)
	ListForResource(ctx context.Context, resourceID string) ([]*Reservation, error)
	ListOwnedBy(ctx context.Context, owner string) ([]*Reservation, error)
	Delete(ctx context.Context, id string, actingUser string) error
	RenameCascade(ctx context.Context, resourceID, newName string) error
	// ApplyResourceEdit stores an edited resource once every existing
	// reservation still fits its window, and carries a new name over to them.
	ApplyResourceEdit(ctx context.Context, edited *resource.Resource) error
}

type service struct {
	repo   Repository
	filter availability.Filter
	log    *slog.Logger
}

func NewService(repo Repository, filter availability.Filter, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{repo: repo, filter: filter, log: log}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if req.Owner == "" {
		return nil, auth.ErrUnauthenticated
	}

	interval, err := timeofday.WindowFrom(req.Start, req.DurationMinutes)
	if err != nil {
		// Running past midnight can never fit a window within one day.
		return nil, fmt.Errorf("%w: %s plus %d minutes", ErrOutOfWindow, req.Start, req.DurationMinutes)
	}

	admit := func(parent *resource.Resource, siblings []*Reservation) error {
		if !s.filter.Fits(parent.Window, interval) {
			return fmt.Errorf("%w: %s is outside %s", ErrOutOfWindow, interval, parent.Window)
		}
		if s.filter.RejectOverlap {
			if clash := availability.Conflicts(siblings, interval); len(clash) > 0 {
				return fmt.Errorf("%w: overlaps %s", ErrTimeConflict, clash[0].Interval)
			}
		}
		return nil
	}

	r := &Reservation{
		ResourceID:      req.ResourceID,
		Owner:           req.Owner,
		Interval:        interval,
		DurationMinutes: req.DurationMinutes,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Create(ctx, r, admit); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("reservation created",
		"operation", "reservation.create", "reservation_id", r.ID,
		"resource_id", r.ResourceID, "owner", r.Owner, "interval", r.Interval.String())
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]*Reservation, error) {
	return s.repo.List(ctx, Filter{})
}

func (s *service) ListForResource(ctx context.Context, resourceID string) ([]*Reservation, error) {
	return s.repo.List(ctx, Filter{ResourceID: resourceID})
}

func (s *service) ListOwnedBy(ctx context.Context, owner string) ([]*Reservation, error) {
	if owner == "" {
		return []*Reservation{}, nil
	}
	return s.repo.List(ctx, Filter{Owner: owner})
}

func (s *service) Delete(ctx context.Context, id string, actingUser string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AssertOwner(r.Owner, actingUser); err != nil {
		return err
	}

	log := logger.FromContext(ctx, s.log)
	if err := s.repo.Delete(ctx, r); err != nil {
		if errors.Is(err, resource.ErrInvariantViolation) {
			log.Error("reservation counter out of sync",
				"operation", "reservation.delete", "reservation_id", id,
				"resource_id", r.ResourceID, "error", err)
		}
		return err
	}

	log.Info("reservation deleted",
		"operation", "reservation.delete", "reservation_id", id, "resource_id", r.ResourceID)
	return nil
}

func (s *service) RenameCascade(ctx context.Context, resourceID, newName string) error {
	return s.repo.RenameResource(ctx, resourceID, newName)
}

func (s *service) ApplyResourceEdit(ctx context.Context, edited *resource.Resource) error {
	check := func(_ *resource.Resource, siblings []*Reservation) error {
		for _, r := range siblings {
			if !s.filter.Fits(edited.Window, r.Interval) {
				return fmt.Errorf("%w: reservation %s at %s is outside %s",
					ErrWindowExcludes, r.ID, r.Interval, edited.Window)
			}
		}
		return nil
	}

	if err := s.repo.UpdateResource(ctx, edited, check); err != nil {
		return err
	}

	logger.FromContext(ctx, s.log).Info("resource updated",
		"operation", "reservation.apply_resource_edit", "resource_id", edited.ID,
		"window", edited.Window.String())
	return nil
}
