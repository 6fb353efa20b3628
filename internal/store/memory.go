package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/supplysetu/internal/models"
)

// memoryCollection keeps records in a map with a parallel insertion-order index.
type memoryCollection[T any, P recordPtr[T]] struct {
	mu     sync.RWMutex
	items  map[string]T
	order  []string
	fields Fields[T]
	hook   UpdateHook[T]
	now    Clock
}

func newMemoryCollection[T any, P recordPtr[T]](now Clock, fields Fields[T], hook UpdateHook[T]) *memoryCollection[T, P] {
	return &memoryCollection[T, P]{
		items:  map[string]T{},
		fields: fields,
		hook:   hook,
		now:    now,
	}
}

// cloneRecord copies rec so that the stored record and the caller's share
// no slices or pointers.
func cloneRecord[T any](rec *T) T {
	if c, ok := any(rec).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return *rec
}

func (m *memoryCollection[T, P]) Create(_ context.Context, rec *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	next := cloneRecord(rec)
	P(&next).Stamp(models.NewID(), now)
	if m.hook != nil {
		var zero T
		m.hook(&zero, &next, now)
	}

	id := P(&next).GetID()
	m.items[id] = next
	m.order = append(m.order, id)

	out := cloneRecord(&next)
	return &out, nil
}

func (m *memoryCollection[T, P]) Get(_ context.Context, id string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRecord(&rec)
	return &out, nil
}

func (m *memoryCollection[T, P]) Update(_ context.Context, id string, mutate func(*T) error) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := cloneRecord(&prev)
	if err := mutate(&next); err != nil {
		return nil, err
	}

	now := m.now()
	base := P(&prev)
	// id and creation time are immutable whatever the mutation did
	P(&next).Stamp(base.GetID(), base.Created())
	P(&next).Touch(now)
	if m.hook != nil {
		m.hook(&prev, &next, now)
	}

	// the key is the stored id; id may alias a request buffer
	m.items[base.GetID()] = next
	out := cloneRecord(&next)
	return &out, nil
}

func (m *memoryCollection[T, P]) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memoryCollection[T, P]) Find(_ context.Context, field string, value any) ([]T, error) {
	get, ok := m.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0)
	for _, id := range m.order {
		rec := m.items[id]
		if get(&rec) == value {
			out = append(out, cloneRecord(&rec))
		}
	}
	return out, nil
}

func (m *memoryCollection[T, P]) FindOne(ctx context.Context, field string, value any) (*T, error) {
	found, err := m.Find(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (m *memoryCollection[T, P]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		rec := m.items[id]
		out = append(out, cloneRecord(&rec))
	}
	return out, nil
}

// NewMemory builds a store backed by process memory.
func NewMemory() *Store {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock builds a memory store with a custom time source.
func NewMemoryWithClock(now Clock) *Store {
	return &Store{
		Users:          newMemoryCollection[models.User](now, userFields, nil),
		StallTypes:     newMemoryCollection[models.StallType](now, stallTypeFields, nil),
		Vendors:        newMemoryCollection[models.Vendor](now, vendorFields, nil),
		Suppliers:      newMemoryCollection[models.Supplier](now, supplierFields, nil),
		Products:       newMemoryCollection[models.Product](now, productFields, nil),
		Bundles:        newMemoryCollection[models.Bundle](now, bundleFields, nil),
		Orders:         newMemoryCollection[models.Order](now, orderFields, nil),
		Deliveries:     newMemoryCollection[models.Delivery](now, deliveryFields, nil),
		DeliveryPauses: newMemoryCollection[models.DeliveryPause](now, pauseFields, nil),
		Complaints:     newMemoryCollection[models.Complaint](now, complaintFields, models.DeriveResolution),
		Subscriptions:  newMemoryCollection[models.Subscription](now, subscriptionFields, nil),
		Notifications:  newMemoryCollection[models.Notification](now, notificationFields, nil),
	}
}
