package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/models"
)

func TestTelegram_SendToAdmin(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	tg := NewTelegramService(srv.URL, "TOKEN", "42", zap.NewNop())
	err := tg.NotifyNewOrder(context.Background(), OrderNotification{
		OrderID:    "o-1",
		VendorName: "Ramesh",
		Items: []OrderItemNotification{
			{Name: "Potato", Quantity: "10", Unit: "kg", Price: models.MustMoney("20")},
		},
		Total: models.MustMoney("2450"),
	})
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "₹2,450.00")
	assert.Contains(t, got.Text, "Potato")
}

func TestTelegram_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegramService(srv.URL, "TOKEN", "42", zap.NewNop())
	err := tg.SendMessage(context.Background(), "42", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegram_Unconfigured(t *testing.T) {
	tg := NewTelegramService("http://127.0.0.1:1", "", "", zap.NewNop())
	assert.NoError(t, tg.SendToAdmin(context.Background(), "hi"))
	assert.ErrorIs(t, tg.SendMessage(context.Background(), "1", "hi"), ErrTelegramDisabled)
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹350.00", FormatRupees(models.MustMoney("350")))
	assert.Equal(t, "₹1,234,567.50", FormatRupees(models.MustMoney("1234567.5")))
	assert.Equal(t, "-₹1,000.00", FormatRupees(models.MustMoney("-1000")))
}
