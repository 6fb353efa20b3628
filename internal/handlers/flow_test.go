package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/supplysetu/internal/store"
)

func TestFlow_VendorOnboardingToFirstOrder(t *testing.T) {
	h := newHarness(t)

	login := h.post("/api/auth/login", fiber.Map{"phone_number": "1122334455"})
	require.Equal(t, http.StatusOK, login.Status)
	require.True(t, login.Get("user.is_verified").Bool())
	require.NotEmpty(t, login.Get("token").String())
	userID := login.Get("user.id").String()

	stallTypeID := h.chaatStallID()
	vendor := h.post("/api/vendors", fiber.Map{"user_id": userID, "stall_type_id": stallTypeID})
	require.Equal(t, http.StatusCreated, vendor.Status)
	vendorID := vendor.Get("data.id").String()

	bundles := h.get("/api/bundles/stall-type/" + stallTypeID)
	require.Equal(t, http.StatusOK, bundles.Status)
	seeded := bundles.Get(`data.#(name=="` + store.ChaatBundleName + `")`)
	require.True(t, seeded.Exists())
	assert.Equal(t, "2450.00", seeded.Get("total_cost").String())

	_, supplierID := h.newSupplier("9400000001")
	productID := h.newProduct(supplierID, "Sev", "120", 20)

	order := h.post("/api/orders", fiber.Map{
		"vendor_id":     vendorID,
		"supplier_id":   supplierID,
		"items":         []fiber.Map{{"product_id": productID, "quantity": 2, "unit": "kg"}},
		"delivery_type": "monthly",
	})
	require.Equal(t, http.StatusCreated, order.Status, string(order.Body))

	orders := h.get("/api/orders/vendor/" + vendorID)
	require.Equal(t, http.StatusOK, orders.Status)
	require.Equal(t, int64(1), orders.Get("data.#").Int())
	assert.Equal(t, order.Get("data.id").String(), orders.Get("data.0.id").String())
	assert.Equal(t, "pending", orders.Get("data.0.status").String())
}

func TestStallTypes_Seeded(t *testing.T) {
	h := newHarness(t)

	res := h.get("/api/stall-types")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, int64(3), res.Get("data.#").Int())
	assert.Equal(t, store.ChaatStallName, res.Get(`data.#(slug=="chaat").name`).String())

	assert.Equal(t, http.StatusNotFound, h.get("/api/bundles/stall-type/missing").Status)
}

func TestFlow_SubscriptionLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	h := f.h

	res := h.post("/api/subscriptions", fiber.Map{
		"vendor_id":          f.vendorID,
		"supplier_id":        f.supplierID,
		"delivery_frequency": "weekly",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = h.post("/api/subscriptions", fiber.Map{
		"vendor_id":          f.vendorID,
		"supplier_id":        f.supplierID,
		"custom_items":       []fiber.Map{{"product_id": f.potato, "quantity": "5", "unit": "kg"}},
		"delivery_frequency": "weekly",
		"start_date":         "2024-07-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))
	id := res.Get("data.id").String()
	assert.True(t, res.Get("data.is_active").Bool())
	assert.Equal(t, "2024-07-08T00:00:00Z", res.Get("data.next_delivery").String())

	res = h.patch("/api/subscriptions/"+id, fiber.Map{"is_active": false})
	require.Equal(t, http.StatusOK, res.Status)
	assert.False(t, res.Get("data.is_active").Bool())

	list := h.get("/api/subscriptions/vendor/" + f.vendorID)
	assert.Equal(t, int64(1), list.Get("data.#").Int())
	assert.Equal(t, http.StatusNotFound, h.get("/api/subscriptions/missing").Status)
}

func TestProducts_CRUD(t *testing.T) {
	h := newHarness(t)
	_, supplierID := h.newSupplier("9400000002")

	res := h.post("/api/products", fiber.Map{
		"supplier_id": supplierID, "name": "Mango", "name_hindi": "आम", "category": "fruit",
		"price": "60", "unit": "kg",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Get("message").String(), "category")

	res = h.post("/api/products", fiber.Map{
		"supplier_id": supplierID, "name": "Mango", "name_hindi": "आम", "category": "perishable",
		"price": "-1", "unit": "kg",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = h.post("/api/products", fiber.Map{
		"supplier_id": supplierID, "name": "Mango", "name_hindi": "आम", "category": "perishable",
		"price": "60", "unit": "kg", "image_url": "/uploads/products/mango.jpg",
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))
	id := res.Get("data.id").String()
	assert.Contains(t, []string{"fresh", "blurred", "low_quality"}, res.Get("data.freshness_status").String())

	res = h.patch("/api/products/"+id, fiber.Map{"price": "55.5", "stock_level": 12})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "55.50", res.Get("data.price").String())
	assert.Equal(t, "Mango", res.Get("data.name").String())

	assert.Equal(t, int64(1), h.get("/api/products?category=perishable").Get("data.#").Int())
	assert.Equal(t, int64(0), h.get("/api/products?category=non_perishable").Get("data.#").Int())
	assert.Equal(t, int64(1), h.get("/api/products/supplier/"+supplierID).Get("data.#").Int())

	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/products/"+id, nil, "").Status)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/products/"+id, nil, "").Status)
	assert.Equal(t, http.StatusNotFound, h.get("/api/products/"+id).Status)
	assert.Equal(t, http.StatusNotFound, h.patch("/api/products/"+id, fiber.Map{"name": "x"}).Status)
}

func TestCreateSubscription_ForeignProduct(t *testing.T) {
	f := newOrderFixture(t)
	h := f.h
	_, otherSupplierID := h.newSupplier("9100000003")
	cabbage := h.newProduct(otherSupplierID, "Cabbage", "15", 20)

	res := h.post("/api/subscriptions", fiber.Map{
		"vendor_id":          f.vendorID,
		"supplier_id":        f.supplierID,
		"custom_items":       []fiber.Map{{"product_id": cabbage, "quantity": "2"}},
		"delivery_frequency": "weekly",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status, string(res.Body))

	res = h.post("/api/subscriptions", fiber.Map{
		"vendor_id":          f.vendorID,
		"supplier_id":        f.supplierID,
		"custom_items":       []fiber.Map{{"product_id": f.potato, "quantity": "200000"}},
		"delivery_frequency": "weekly",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status, string(res.Body))

	subs, err := h.store.Subscriptions.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, subs)
}
