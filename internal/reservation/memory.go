package reservation

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/keylock"
	"github.com/nekogravitycat/resource-share-backend/internal/resource"
)

// MemoryRepository keeps reservations in process memory and updates the
// parent counters through the given resource repository. Every change to one
// resource's reservations is serialized by a per-resource lock.
type MemoryRepository struct {
	resources resource.Repository
	locks     keylock.Locker

	mu    sync.RWMutex
	items map[string]*Reservation
	seq   map[string]int64
	next  int64
	now   func() time.Time
}

type MemoryOption func(*MemoryRepository)

func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryRepository) { m.now = now }
}

func NewMemoryRepository(resources resource.Repository, opts ...MemoryOption) *MemoryRepository {
	m := &MemoryRepository{
		resources: resources,
		items:     make(map[string]*Reservation),
		seq:       make(map[string]int64),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func clone(r *Reservation) *Reservation {
	c := *r
	return &c
}

func (m *MemoryRepository) Create(ctx context.Context, r *Reservation, admit AdmitFunc) error {
	unlock := m.locks.Lock(r.ResourceID)
	defer unlock()

	parent, err := m.resources.GetByID(ctx, r.ResourceID)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return ErrResourceNotFound
		}
		return err
	}

	siblings, err := m.List(ctx, Filter{ResourceID: r.ResourceID})
	if err != nil {
		return err
	}
	if admit != nil {
		if err := admit(parent, siblings); err != nil {
			return err
		}
	}

	// The counter moves first; the insert below cannot fail.
	if err := m.resources.AdjustReservationCount(ctx, r.ResourceID, 1); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = uuid.NewString()
	r.ResourceName = parent.Name
	r.CreatedAt = m.now()
	m.items[r.ID] = clone(r)
	m.next++
	m.seq[r.ID] = m.next
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (m *MemoryRepository) List(_ context.Context, filter Filter) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*Reservation{}
	for _, r := range m.items {
		if filter.ResourceID != "" && r.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Owner != "" && r.Owner != filter.Owner {
			continue
		}
		out = append(out, clone(r))
	}

	slices.SortFunc(out, func(a, b *Reservation) int {
		if c := cmp.Compare(a.Interval.Start.Minutes(), b.Interval.Start.Minutes()); c != 0 {
			return c
		}
		return cmp.Compare(m.seq[a.ID], m.seq[b.ID])
	})
	return out, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, r *Reservation) error {
	unlock := m.locks.Lock(r.ResourceID)
	defer unlock()

	m.mu.RLock()
	_, ok := m.items[r.ID]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	// A rejected decrement leaves the reservation in place.
	if err := m.resources.AdjustReservationCount(ctx, r.ResourceID, -1); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	m.mu.Lock()
	delete(m.items, r.ID)
	delete(m.seq, r.ID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) RenameResource(_ context.Context, resourceID, name string) error {
	unlock := m.locks.Lock(resourceID)
	defer unlock()

	m.rename(resourceID, name)
	return nil
}

func (m *MemoryRepository) rename(resourceID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.items {
		if r.ResourceID == resourceID {
			r.ResourceName = name
		}
	}
}

func (m *MemoryRepository) UpdateResource(ctx context.Context, res *resource.Resource, check AdmitFunc) error {
	unlock := m.locks.Lock(res.ID)
	defer unlock()

	current, err := m.resources.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}

	siblings, err := m.List(ctx, Filter{ResourceID: res.ID})
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(current, siblings); err != nil {
			return err
		}
	}

	renamed := current.Name != res.Name
	applyEdit(current, res)
	if err := m.resources.Update(ctx, current); err != nil {
		return err
	}
	if renamed {
		m.rename(current.ID, current.Name)
	}

	*res = *current
	return nil
}
