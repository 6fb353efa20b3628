package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_NewNumberCreatesUnverifiedVendor(t *testing.T) {
	h := newHarness(t)

	res := h.post("/api/auth/login", fiber.Map{"phone_number": "9876543210"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "vendor", res.Get("user.role").String())
	assert.False(t, res.Get("user.is_verified").Bool())
	assert.False(t, res.Get("is_test_number").Bool())
	assert.False(t, res.Get("token").Exists())

	again := h.post("/api/auth/login", fiber.Map{"phone_number": "9876543210"})
	require.Equal(t, http.StatusOK, again.Status)
	assert.Equal(t, res.Get("user.id").String(), again.Get("user.id").String())
}

func TestLogin_TestNumberIsVerified(t *testing.T) {
	h := newHarness(t)

	res := h.post("/api/auth/login", fiber.Map{"phone_number": "1122334455"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Get("user.is_verified").Bool())
	assert.True(t, res.Get("is_test_number").Bool())
	assert.Equal(t, "Test number - automatically verified", res.Get("message").String())

	me := h.do(http.MethodGet, "/api/auth/me", nil, res.Get("token").String())
	require.Equal(t, http.StatusOK, me.Status)
	assert.Equal(t, "1122334455", me.Get("data.phone_number").String())
}

func TestLogin_MissingPhone(t *testing.T) {
	h := newHarness(t)

	res := h.post("/api/auth/login", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.False(t, res.Get("success").Bool())
	assert.Contains(t, res.Get("message").String(), "phone_number")
}

func TestVerifyOTP(t *testing.T) {
	h := newHarness(t)

	res := h.post("/api/auth/verify-otp", fiber.Map{"phone_number": "5550001111", "otp": "123456"})
	assert.Equal(t, http.StatusNotFound, res.Status)

	h.login("5550001111")
	res = h.post("/api/auth/verify-otp", fiber.Map{"phone_number": "5550001111", "otp": "123456"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Get("user.is_verified").Bool())
	assert.NotEmpty(t, res.Get("token").String())
}

func TestMe_RequiresToken(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.get("/api/auth/me").Status)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", nil, "garbage").Status)
}

func TestUpdateUser_RoleLockedAfterOnboarding(t *testing.T) {
	h := newHarness(t)
	userID, _ := h.newVendor("9000000001")

	res := h.patch("/api/users/"+userID, fiber.Map{"role": "supplier"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = h.patch("/api/users/"+userID, fiber.Map{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = h.patch("/api/users/missing", fiber.Map{"name": "x"})
	assert.Equal(t, http.StatusNotFound, res.Status)
}
