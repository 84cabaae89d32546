package resource

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps resources in process memory. It backs the
// STORE_DRIVER=memory mode and the tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Resource
	seq   map[string]int64
	next  int64
	now   func() time.Time
}

type MemoryOption func(*MemoryRepository)

// WithClock replaces time.Now for created and activity timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryRepository) { m.now = now }
}

func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	m := &MemoryRepository{
		items: make(map[string]*Resource),
		seq:   make(map[string]int64),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func clone(r *Resource) *Resource {
	c := *r
	c.Tags = slices.Clone(r.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if r.ImageID != nil {
		id := *r.ImageID
		c.ImageID = &id
	}
	return &c
}

func (m *MemoryRepository) Create(_ context.Context, res *Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	res.ID = uuid.NewString()
	res.CreatedAt = now
	res.LastActivityAt = now

	m.items[res.ID] = clone(res)
	m.next++
	m.seq[res.ID] = m.next
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(res), nil
}

func (m *MemoryRepository) List(_ context.Context, filter Filter) ([]*Resource, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nameQuery := strings.ToLower(filter.NameQuery)
	matches := make([]*Resource, 0, len(m.items))
	for _, res := range m.items {
		if filter.Owner != "" && res.Owner != filter.Owner {
			continue
		}
		if filter.Tag != "" && !res.HasTag(filter.Tag) {
			continue
		}
		if nameQuery != "" && !strings.Contains(strings.ToLower(res.Name), nameQuery) {
			continue
		}
		if filter.Fits != nil && !res.Window.Contains(*filter.Fits) {
			continue
		}
		matches = append(matches, res)
	}

	desc := !strings.EqualFold(filter.SortOrder, "asc")
	slices.SortFunc(matches, func(a, b *Resource) int {
		var c int
		switch filter.SortBy {
		case SortByName:
			c = cmp.Compare(a.Name, b.Name)
		case SortByLastActivityAt:
			c = a.LastActivityAt.Compare(b.LastActivityAt)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmp.Compare(m.seq[a.ID], m.seq[b.ID])
		}
		if desc {
			return -c
		}
		return c
	})

	total := len(matches)
	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		lo := min((page-1)*filter.PageSize, total)
		hi := min(lo+filter.PageSize, total)
		matches = matches[lo:hi]
	}

	out := make([]*Resource, len(matches))
	for i, res := range matches {
		out[i] = clone(res)
	}
	return out, total, nil
}

func (m *MemoryRepository) Update(_ context.Context, res *Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[res.ID]
	if !ok {
		return ErrNotFound
	}
	updated := clone(res)
	stored.Name = updated.Name
	stored.Window = updated.Window
	stored.DurationMinutes = updated.DurationMinutes
	stored.Tags = updated.Tags
	stored.ImageID = updated.ImageID
	return nil
}

func (m *MemoryRepository) AdjustReservationCount(_ context.Context, id string, delta int) error {
	if delta != 1 && delta != -1 {
		return fmt.Errorf("%w: %d", ErrInvalidDelta, delta)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	if stored.ReservationCount+delta < 0 {
		return fmt.Errorf("%w: resource %s", ErrInvariantViolation, id)
	}

	stored.ReservationCount += delta
	if delta > 0 {
		stored.HasBeenReserved = true
		stored.LastActivityAt = m.now()
	}
	return nil
}
