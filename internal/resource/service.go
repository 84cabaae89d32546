package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/cache"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
	"github.com/nekogravitycat/resource-share-backend/internal/timeofday"
)

type CreateRequest struct {
	Name  string
	Start timeofday.TimeOfDay
	End   timeofday.TimeOfDay
	Tags  []string
	Owner string
}

// UpdateRequest carries the edited fields. Nil fields keep their value.
type UpdateRequest struct {
	Name  *string
	Start *timeofday.TimeOfDay
	End   *timeofday.TimeOfDay
	Tags  []string // nil keeps the current tags, empty clears them
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	ListAll(ctx context.Context) ([]*Resource, error)
	ListOwnedBy(ctx context.Context, owner string) ([]*Resource, error)
	Update(ctx context.Context, id string, req UpdateRequest, actingUser string) (*Resource, error)
	// PrepareUpdate checks ownership and validates req against the stored
	// resource. It returns the edited resource without storing it.
	PrepareUpdate(ctx context.Context, id string, req UpdateRequest, actingUser string) (*Resource, error)
	IncrementReservationCount(ctx context.Context, id string, delta int) error
	SetImage(ctx context.Context, id string, fileID string, actingUser string) (*Resource, error)

	FindByTag(ctx context.Context, tag string) ([]*Resource, error)
	FindByNameSubstring(ctx context.Context, query string) ([]*Resource, error)
	FindAvailableFor(ctx context.Context, interval timeofday.Window) ([]*Resource, error)
}

type service struct {
	repo     Repository
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

type ServiceOption func(*service)

// WithSearchCache caches search results for ttl. Writes do not invalidate
// entries, so results may lag by up to ttl.
func WithSearchCache(c cache.Cache, ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) { s.log = l }
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:  repo,
		cache: cache.Noop{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	window, err := timeofday.NewWindow(req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidWindow, req.Start, req.End)
	}
	if req.Owner == "" {
		return nil, auth.ErrUnauthenticated
	}

	res := &Resource{
		Name:            name,
		Owner:           req.Owner,
		Window:          window,
		DurationMinutes: window.Duration(),
		Tags:            NormalizeTags(req.Tags),
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("resource created",
		"operation", "resource.create", "resource_id", res.ID, "owner", res.Owner)
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListAll(ctx context.Context) ([]*Resource, error) {
	items, _, err := s.repo.List(ctx, Filter{SortBy: SortByCreatedAt, SortOrder: "desc"})
	return items, err
}

func (s *service) ListOwnedBy(ctx context.Context, owner string) ([]*Resource, error) {
	items, _, err := s.repo.List(ctx, Filter{Owner: owner, SortBy: SortByCreatedAt, SortOrder: "desc"})
	return items, err
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actingUser string) (*Resource, error) {
	next, err := s.PrepareUpdate(ctx, id, req, actingUser)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *service) PrepareUpdate(ctx context.Context, id string, req UpdateRequest, actingUser string) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AssertOwner(res.Owner, actingUser); err != nil {
		return nil, err
	}

	next := *res
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		next.Name = name
	}
	start, end := res.Window.Start, res.Window.End
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}
	window, err := timeofday.NewWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %s-%s", ErrInvalidWindow, start, end)
	}
	next.Window = window
	next.DurationMinutes = window.Duration()
	if req.Tags != nil {
		next.Tags = NormalizeTags(req.Tags)
	}
	return &next, nil
}

func (s *service) IncrementReservationCount(ctx context.Context, id string, delta int) error {
	err := s.repo.AdjustReservationCount(ctx, id, delta)
	if errors.Is(err, ErrInvariantViolation) || errors.Is(err, ErrInvalidDelta) {
		logger.FromContext(ctx, s.log).Error("reservation counter rejected",
			"operation", "resource.adjust_count", "resource_id", id, "delta", delta, "error", err)
	}
	return err
}

func (s *service) SetImage(ctx context.Context, id string, fileID string, actingUser string) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AssertOwner(res.Owner, actingUser); err != nil {
		return nil, err
	}

	res.ImageID = &fileID
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) FindByTag(ctx context.Context, tag string) ([]*Resource, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return []*Resource{}, nil
	}
	return s.cachedList(ctx, cache.Key("resources", "tag", tag), Filter{Tag: tag})
}

func (s *service) FindByNameSubstring(ctx context.Context, query string) ([]*Resource, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Resource{}, nil
	}
	return s.cachedList(ctx, cache.Key("resources", "name", strings.ToLower(query)), Filter{NameQuery: query})
}

func (s *service) FindAvailableFor(ctx context.Context, interval timeofday.Window) ([]*Resource, error) {
	key := cache.Key("resources", "fits", interval.String())
	return s.cachedList(ctx, key, Filter{Fits: &interval})
}

func (s *service) cachedList(ctx context.Context, key string, filter Filter) ([]*Resource, error) {
	log := logger.FromContext(ctx, s.log)

	var cached []*Resource
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("search cache read failed", "operation", "resource.search", "error", err)
	}
	if hit {
		return cached, nil
	}

	filter.SortBy = SortByCreatedAt
	filter.SortOrder = "desc"
	items, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, items, s.cacheTTL); err != nil {
			log.Warn("search cache write failed", "operation", "resource.search", "error", err)
		}
	}
	return items, nil
}
