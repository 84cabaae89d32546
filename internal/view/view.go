// Package view assembles the read models shown to users from the resource
// and reservation stores.
package view

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/availability"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/resource-share-backend/internal/reservation"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

const (
	SearchByName = "name"
	SearchByTime = "time"
)

var ErrInvalidSearchType = apperror.New(http.StatusBadRequest, "search type must be 'name' or 'time'")

type DashboardView struct {
	AllResources         []*resource.Resource
	MyResources          []*resource.Resource
	MyActiveReservations []*reservation.Reservation
}

type ResourceDetailView struct {
	Resource                *resource.Resource
	IsEditableByCurrentUser bool
	UpcomingReservations    []*reservation.Reservation
}

type ReservationDetailView struct {
	Reservation             *reservation.Reservation
	IsEditableByCurrentUser bool
}

type TagSearchView struct {
	TagName string
	Matches []*resource.Resource
}

// NameOrTimeSearchView is the result of a search by name substring or by a
// time interval. Start and End are only set for time searches.
type NameOrTimeSearchView struct {
	Type    string
	Query   string
	Start   *timeofday.TimeOfDay
	End     *timeofday.TimeOfDay
	Matches []*resource.Resource
}

type ResourceFeedView struct {
	Resource     *resource.Resource
	Reservations []*reservation.Reservation
}

type Service struct {
	resources    resource.Service
	reservations reservation.Service
	filter       availability.Filter
	now          func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(resources resource.Service, reservations reservation.Service, filter availability.Filter, opts ...Option) *Service {
	s := &Service{
		resources:    resources,
		reservations: reservations,
		filter:       filter,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Dashboard(ctx context.Context, currentUser string) (*DashboardView, error) {
	all, err := s.resources.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard resources: %w", err)
	}

	v := &DashboardView{
		AllResources:         all,
		MyResources:          []*resource.Resource{},
		MyActiveReservations: []*reservation.Reservation{},
	}
	if currentUser == "" {
		return v, nil
	}

	if v.MyResources, err = s.resources.ListOwnedBy(ctx, currentUser); err != nil {
		return nil, fmt.Errorf("dashboard owned resources: %w", err)
	}
	mine, err := s.reservations.ListOwnedBy(ctx, currentUser)
	if err != nil {
		return nil, fmt.Errorf("dashboard reservations: %w", err)
	}
	v.MyActiveReservations = availability.Active(s.filter, mine, s.now())
	return v, nil
}

func (s *Service) ResourceDetail(ctx context.Context, id, currentUser string) (*ResourceDetailView, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.reservations.ListForResource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resource reservations: %w", err)
	}

	return &ResourceDetailView{
		Resource:                res,
		IsEditableByCurrentUser: auth.IsOwner(res.Owner, currentUser),
		UpcomingReservations:    availability.OwnedAndActive(s.filter, all, currentUser, s.now()),
	}, nil
}

func (s *Service) ReservationDetail(ctx context.Context, id, currentUser string) (*ReservationDetailView, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ReservationDetailView{
		Reservation:             r,
		IsEditableByCurrentUser: auth.IsOwner(r.Owner, currentUser),
	}, nil
}

func (s *Service) TagSearch(ctx context.Context, tag string) (*TagSearchView, error) {
	matches, err := s.resources.FindByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	return &TagSearchView{TagName: tag, Matches: matches}, nil
}

// SearchQuery holds the raw search parameters. Query is used for name
// searches, Start and DurationMinutes for time searches.
type SearchQuery struct {
	Type            string
	Query           string
	Start           string
	DurationMinutes int
}

func (s *Service) Search(ctx context.Context, q SearchQuery) (*NameOrTimeSearchView, error) {
	switch strings.ToLower(strings.TrimSpace(q.Type)) {
	case SearchByName:
		matches, err := s.resources.FindByNameSubstring(ctx, q.Query)
		if err != nil {
			return nil, err
		}
		return &NameOrTimeSearchView{Type: SearchByName, Query: q.Query, Matches: matches}, nil

	case SearchByTime:
		start, err := timeofday.Parse(q.Start)
		if err != nil {
			return nil, err
		}
		if q.DurationMinutes <= 0 {
			return nil, reservation.ErrInvalidDuration
		}
		end, err := timeofday.AddMinutes(start, q.DurationMinutes)
		if err != nil {
			return nil, err
		}
		matches, err := s.resources.FindAvailableFor(ctx, timeofday.Window{Start: start, End: end})
		if err != nil {
			return nil, err
		}
		return &NameOrTimeSearchView{Type: SearchByTime, Start: &start, End: &end, Matches: matches}, nil

	default:
		return nil, ErrInvalidSearchType
	}
}

func (s *Service) ResourceFeed(ctx context.Context, id string) (*ResourceFeedView, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.ListForResource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("feed reservations: %w", err)
	}
	return &ResourceFeedView{Resource: res, Reservations: reservations}, nil
}
