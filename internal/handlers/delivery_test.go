package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

// brokenOrders fails every Get, as an unreachable database would.
type brokenOrders struct {
	store.Collection[models.Order]
}

func (brokenOrders) Get(context.Context, string) (*models.Order, error) {
	return nil, errors.New("connection refused")
}

func TestDelivery_AdvancesAndCompletesOrder(t *testing.T) {
	f := newOrderFixture(t)
	orderID := f.placeOrder(t, nil).Get("data.id").String()
	require.Equal(t, http.StatusOK, f.h.patch("/api/orders/"+orderID, fiber.Map{"status": "accepted"}).Status)

	res := f.h.post("/api/deliveries", fiber.Map{"order_id": orderID, "scheduled_date": "2024-07-15T08:00:00Z"})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))
	deliveryID := res.Get("data.id").String()
	assert.Equal(t, "scheduled", res.Get("data.status").String())

	res = f.h.patch("/api/deliveries/"+deliveryID, fiber.Map{"status": "in_transit"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "null", res.Get("data.actual_date").Raw)

	res = f.h.patch("/api/deliveries/"+deliveryID, fiber.Map{"status": "delivered"})
	require.Equal(t, http.StatusOK, res.Status)
	actual := res.Get("data.actual_date").String()
	assert.NotEmpty(t, actual)

	res = f.h.patch("/api/deliveries/"+deliveryID, fiber.Map{"notes": "left with neighbour"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, actual, res.Get("data.actual_date").String())

	res = f.h.patch("/api/deliveries/"+deliveryID, fiber.Map{"status": "in_transit"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	assert.Equal(t, "delivered", f.h.get("/api/orders/"+orderID).Get("data.status").String())
}

func TestDelivery_References(t *testing.T) {
	h := newHarness(t)

	res := h.post("/api/deliveries", fiber.Map{"order_id": "missing", "scheduled_date": "2024-07-15T08:00:00Z"})
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = h.post("/api/deliveries", fiber.Map{"order_id": "missing"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	assert.Equal(t, http.StatusNotFound, h.patch("/api/deliveries/missing", fiber.Map{"notes": "x"}).Status)
}

func TestDeliveryPause_OneActivePerVendor(t *testing.T) {
	h := newHarness(t)
	_, vendorID := h.newVendor("9200000001")
	active := "/api/delivery-pauses/vendor/" + vendorID + "/active"

	res := h.get(active)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "null", res.Get("data").Raw)

	res = h.post("/api/delivery-pauses", fiber.Map{
		"vendor_id":  vendorID,
		"start_date": "2024-07-10T00:00:00Z",
		"end_date":   "2024-07-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = h.post("/api/delivery-pauses", fiber.Map{
		"vendor_id":  vendorID,
		"start_date": "2024-07-01T00:00:00Z",
		"end_date":   "2024-07-10T00:00:00Z",
		"reason":     "Diwali",
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))
	pauseID := res.Get("data.id").String()
	assert.True(t, res.Get("data.is_active").Bool())

	res = h.post("/api/delivery-pauses", fiber.Map{
		"vendor_id":  vendorID,
		"start_date": "2024-08-01T00:00:00Z",
		"end_date":   "2024-08-10T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	assert.Equal(t, pauseID, h.get(active).Get("data.id").String())

	res = h.patch("/api/delivery-pauses/"+pauseID, fiber.Map{"is_active": false})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "null", h.get(active).Get("data").Raw)

	res = h.post("/api/delivery-pauses", fiber.Map{
		"vendor_id":  vendorID,
		"start_date": "2024-08-01T00:00:00Z",
		"end_date":   "2024-08-10T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, res.Status)

	res = h.patch("/api/delivery-pauses/"+pauseID, fiber.Map{"is_active": true})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	assert.Equal(t, http.StatusNotFound, h.get("/api/delivery-pauses/vendor/missing/active").Status)
}

func TestDelivery_OrderLookupFailure(t *testing.T) {
	f := newOrderFixture(t)
	orderID := f.placeOrder(t, nil).Get("data.id").String()
	require.Equal(t, http.StatusOK, f.h.patch("/api/orders/"+orderID, fiber.Map{"status": "accepted"}).Status)

	res := f.h.post("/api/deliveries", fiber.Map{"order_id": orderID, "scheduled_date": "2024-07-15T08:00:00Z"})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))
	deliveryID := res.Get("data.id").String()

	orders := f.h.store.Orders
	f.h.store.Orders = brokenOrders{Collection: orders}
	res = f.h.patch("/api/deliveries/"+deliveryID, fiber.Map{"status": "delivered"})
	f.h.store.Orders = orders

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, "internal server error", res.Get("message").String())
	assert.Equal(t, "accepted", f.h.get("/api/orders/"+orderID).Get("data.status").String())

	delivery, err := f.h.store.Deliveries.Get(context.Background(), deliveryID)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryScheduled, delivery.Status)
}
