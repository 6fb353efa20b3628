package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/config"
	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/middleware"
	"github.com/example/supplysetu/internal/routes"
	"github.com/example/supplysetu/internal/server"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
	"github.com/example/supplysetu/internal/utils"
)

const testSecret = "test-secret"

type harness struct {
	t     *testing.T
	app   *fiber.App
	store *store.Store
	cfg   *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := store.NewMemory()
	require.NoError(t, store.Seed(context.Background(), st))

	cfg := &config.Config{
		AppEnv:           "test",
		StoreDriver:      config.StoreMemory,
		JWTSecret:        testSecret,
		TokenExpires:     time.Hour,
		TestPhoneNumbers: []string{"1122334455", "6677889900"},
		OTPMode:          config.OTPStub,
		UploadDir:        t.TempDir(),
		UploadMaxBytes:   1 << 10,
	}
	log := zap.NewNop()
	notifier := services.NewNotifier(st, nil, log)
	t.Cleanup(notifier.Wait)

	app := server.New(routes.Dependencies{
		Store:    st,
		Config:   cfg,
		Log:      log,
		Metrics:  metrics.New("test"),
		Notifier: notifier,
		Advisor:  services.NewMockAdvisor(0),
		Images:   services.NewImageStore(cfg.UploadDir, "", int64(cfg.UploadMaxBytes)),
		Verifier: services.AcceptAnyVerifier{},
		Limiter:  middleware.NewPhoneRateLimiter(600, 100),
	})
	return &harness{t: t, app: app, store: st, cfg: cfg}
}

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

func (h *harness) send(req *http.Request) response {
	h.t.Helper()
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return response{Status: resp.StatusCode, Header: resp.Header, Body: body}
}

func (h *harness) do(method, path string, body interface{}, token string) response {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return h.send(req)
}

func (h *harness) post(path string, body interface{}) response {
	return h.do(http.MethodPost, path, body, "")
}

func (h *harness) patch(path string, body interface{}) response {
	return h.do(http.MethodPatch, path, body, "")
}

func (h *harness) get(path string) response {
	return h.do(http.MethodGet, path, nil, "")
}

func (h *harness) chaatStallID() string {
	h.t.Helper()
	st, err := h.store.StallTypes.FindOne(context.Background(), "name", store.ChaatStallName)
	require.NoError(h.t, err)
	return st.ID
}

// login signs phone in and returns the user id and session token, if any.
func (h *harness) login(phone string) (string, string) {
	h.t.Helper()
	res := h.post("/api/auth/login", fiber.Map{"phone_number": phone})
	require.Equal(h.t, http.StatusOK, res.Status, string(res.Body))
	return res.Get("user.id").String(), res.Get("token").String()
}

func (h *harness) newVendor(phone string) (userID, vendorID string) {
	h.t.Helper()
	userID, _ = h.login(phone)
	res := h.post("/api/vendors", fiber.Map{
		"user_id":       userID,
		"stall_type_id": h.chaatStallID(),
		"location":      "Chandni Chowk",
	})
	require.Equal(h.t, http.StatusCreated, res.Status, string(res.Body))
	return userID, res.Get("data.id").String()
}

func (h *harness) newSupplier(phone string) (userID, supplierID string) {
	h.t.Helper()
	userID, _ = h.login(phone)
	res := h.patch("/api/users/"+userID, fiber.Map{"role": "supplier", "business_name": "Fresh Mandi"})
	require.Equal(h.t, http.StatusOK, res.Status, string(res.Body))
	res = h.post("/api/suppliers", fiber.Map{"user_id": userID, "delivery_zones": []string{"Delhi"}})
	require.Equal(h.t, http.StatusCreated, res.Status, string(res.Body))
	return userID, res.Get("data.id").String()
}

func (h *harness) newProduct(supplierID, name, price string, stock int) string {
	h.t.Helper()
	res := h.post("/api/products", fiber.Map{
		"supplier_id": supplierID,
		"name":        name,
		"name_hindi":  name,
		"category":    "perishable",
		"price":       price,
		"unit":        "kg",
		"stock_level": stock,
	})
	require.Equal(h.t, http.StatusCreated, res.Status, string(res.Body))
	return res.Get("data.id").String()
}

// tokenFor issues a session for userID; the role claim is irrelevant because
// role checks read the stored user.
func tokenFor(t *testing.T, h *harness, userID string) string {
	t.Helper()
	token, err := utils.GenerateToken(h.cfg.JWTSecret, userID, "vendor", time.Hour)
	require.NoError(t, err)
	return token
}
