// Package store holds the entity collections shared by all request handlers.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/supplysetu/internal/models"
)

// ErrNotFound is returned when no record matches an id or filter.
var ErrNotFound = errors.New("record not found")

// ErrUnknownField is returned when a lookup names a field the collection does not index.
var ErrUnknownField = errors.New("unknown lookup field")

// Record is implemented by every entity through models.BaseModel.
type Record interface {
	GetID() string
	Stamp(id string, now time.Time)
	Touch(now time.Time)
	Created() time.Time
}

// recordPtr constrains P to be *T and a Record.
type recordPtr[T any] interface {
	*T
	Record
}

// UpdateHook derives fields after a mutation. On create prev is the zero value.
type UpdateHook[T any] func(prev, next *T, now time.Time)

// Fields maps lookup names to accessors used by Find.
type Fields[T any] map[string]func(*T) any

// Collection is keyed storage for one entity type.
type Collection[T any] interface {
	// Create assigns a fresh id and timestamps, stores rec and returns the stored copy.
	Create(ctx context.Context, rec *T) (*T, error)
	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, id string) (*T, error)
	// Update applies mutate to the stored record and saves it. A mutate error
	// aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*T) error) (*T, error)
	// Delete reports whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
	// Find returns all records whose field equals value, in insertion order.
	Find(ctx context.Context, field string, value any) ([]T, error)
	// FindOne returns the first match of Find or ErrNotFound.
	FindOne(ctx context.Context, field string, value any) (*T, error)
	// List returns every record in insertion order.
	List(ctx context.Context) ([]T, error)
}

// Store groups one collection per entity type.
type Store struct {
	Users          Collection[models.User]
	StallTypes     Collection[models.StallType]
	Vendors        Collection[models.Vendor]
	Suppliers      Collection[models.Supplier]
	Products       Collection[models.Product]
	Bundles        Collection[models.Bundle]
	Orders         Collection[models.Order]
	Deliveries     Collection[models.Delivery]
	DeliveryPauses Collection[models.DeliveryPause]
	Complaints     Collection[models.Complaint]
	Subscriptions  Collection[models.Subscription]
	Notifications  Collection[models.Notification]

	mu sync.Mutex
}

// Atomic runs fn while holding the store-wide write lock. Handlers wrap
// validate-then-write sequences in it so that referential checks and the
// following write cannot interleave with another request.
func (s *Store) Atomic(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Clock returns the current time; replaced in tests.
type Clock func() time.Time
