package store

import (
	"context"
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/supplysetu/internal/models"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)}
	return NewMemoryWithClock(clock.Now), clock
}

func TestMemory_CreateThenGet(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	created, err := s.Users.Create(ctx, &models.User{PhoneNumber: "9876543210", Role: models.RoleVendor})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, clock.Now(), created.CreatedAt)

	got, err := s.Users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "9876543210", got.PhoneNumber)
}

func TestMemory_CreateIgnoresCallerID(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	draft := &models.StallType{Name: "Chaat Stall"}
	draft.ID = "chosen-by-client"
	created, err := s.StallTypes.Create(ctx, draft)
	require.NoError(t, err)
	assert.NotEqual(t, "chosen-by-client", created.ID)
}

func TestMemory_UpdateMissingDoesNotCreate(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Vendors.Update(ctx, "missing", func(v *models.Vendor) error {
		v.Location = "Delhi"
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.Vendors.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemory_UpdateKeepsIdentity(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	created, err := s.Vendors.Create(ctx, &models.Vendor{UserID: "u1", Location: "Agra"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	updated, err := s.Vendors.Update(ctx, created.ID, func(v *models.Vendor) error {
		v.ID = "hijacked"
		v.Location = "Delhi"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock.Now(), updated.UpdatedAt)
	assert.Equal(t, "Delhi", updated.Location)
}

func TestMemory_UpdateMutateErrorLeavesRecord(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Vendors.Create(ctx, &models.Vendor{UserID: "u1", Location: "Agra"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Vendors.Update(ctx, created.ID, func(v *models.Vendor) error {
		v.Location = "Delhi"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Vendors.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Agra", got.Location)
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Products.Create(ctx, &models.Product{Name: "Potato"})
	require.NoError(t, err)

	existed, err := s.Products.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Products.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = s.Products.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_FindInInsertionOrder(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		o, err := s.Orders.Create(ctx, &models.Order{VendorID: "v1", DeliveryType: name})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := s.Orders.Create(ctx, &models.Order{VendorID: "v2"})
	require.NoError(t, err)

	found, err := s.Orders.Find(ctx, "vendor_id", "v1")
	require.NoError(t, err)
	require.Len(t, found, 3)
	for i, o := range found {
		assert.Equal(t, ids[i], o.ID)
	}

	_, err = s.Orders.Find(ctx, "nope", "v1")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = s.Orders.FindOne(ctx, "vendor_id", "v3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ComplaintResolvedAtSetOnce(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	c, err := s.Complaints.Create(ctx, &models.Complaint{
		VendorID: "v1", Title: "Rotten onions", Description: "Half the sack", Status: models.ComplaintOpen,
	})
	require.NoError(t, err)
	assert.Nil(t, c.ResolvedAt)

	clock.Advance(time.Hour)
	resolved, err := s.Complaints.Update(ctx, c.ID, func(c *models.Complaint) error {
		c.Status = models.ComplaintResolved
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	firstResolution := *resolved.ResolvedAt

	clock.Advance(time.Hour)
	again, err := s.Complaints.Update(ctx, c.ID, func(c *models.Complaint) error {
		c.Response = "Refund issued"
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, firstResolution, *again.ResolvedAt)

	clock.Advance(time.Hour)
	closed, err := s.Complaints.Update(ctx, c.ID, func(c *models.Complaint) error {
		c.Status = models.ComplaintClosed
		c.ResolvedAt = nil
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, closed.ResolvedAt)
	assert.Equal(t, firstResolution, *closed.ResolvedAt)
}

func TestMemory_ComplaintCreatedResolved(t *testing.T) {
	s, clock := newTestStore()

	c, err := s.Complaints.Create(context.Background(), &models.Complaint{
		VendorID: "v1", Title: "t", Description: "d", Status: models.ComplaintResolved,
	})
	require.NoError(t, err)
	require.NotNil(t, c.ResolvedAt)
	assert.Equal(t, clock.Now(), *c.ResolvedAt)
}

func TestSeed(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s))
	require.NoError(t, Seed(ctx, s))

	stalls, err := s.StallTypes.List(ctx)
	require.NoError(t, err)
	require.Len(t, stalls, 3)

	chaat, err := s.StallTypes.FindOne(ctx, "name", ChaatStallName)
	require.NoError(t, err)

	bundles, err := s.Bundles.Find(ctx, "stall_type_id", chaat.ID)
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, ChaatBundleName, bundles[0].Name)
	assert.Equal(t, "2450.00", bundles[0].TotalCost.String())
	assert.True(t, bundles[0].IsRecommended)
	assert.Len(t, bundles[0].Items, 6)
}

func TestMemory_UpdateKeepsStoredKey(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	user, err := s.Users.Create(ctx, &models.User{PhoneNumber: "9876543210"})
	require.NoError(t, err)

	// id shares memory with buf, the way a request path parameter does
	buf := []byte(user.ID)
	id := unsafe.String(&buf[0], len(buf))
	_, err = s.Users.Update(ctx, id, func(u *models.User) error {
		u.Name = "Ravi"
		return nil
	})
	require.NoError(t, err)
	for i := range buf {
		buf[i] = 'x'
	}

	got, err := s.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Name)

	all, err := s.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, user.ID, all[0].ID)
}

func TestMemory_RecordsShareNoMemory(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	when := time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)
	draft := &models.Order{
		VendorID:     "v1",
		Items:        []models.OrderItem{{ProductID: "p1", Quantity: decimal.NewFromInt(2), Unit: "kg"}},
		DeliveryDate: &when,
	}
	created, err := s.Orders.Create(ctx, draft)
	require.NoError(t, err)

	draft.Items[0].Unit = "draft"
	created.Items[0].Unit = "returned"
	*created.DeliveryDate = when.AddDate(1, 0, 0)

	got, err := s.Orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "kg", got.Items[0].Unit)
	assert.True(t, got.DeliveryDate.Equal(when))

	got.Items[0].Unit = "fetched"
	found, err := s.Orders.Find(ctx, "vendor_id", "v1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "kg", found[0].Items[0].Unit)

	_, err = s.Orders.Update(ctx, created.ID, func(o *models.Order) error {
		o.Items[0].Unit = "aborted"
		return errors.New("abort")
	})
	require.Error(t, err)
	got, err = s.Orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "kg", got.Items[0].Unit)
}
