package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/models"
)

// ErrTelegramDisabled is returned when no bot token is configured.
var ErrTelegramDisabled = errors.New("telegram bot token not configured")

// TelegramService sends messages through the Telegram Bot API.
type TelegramService struct {
	client      *resty.Client
	botToken    string
	adminChatID string
	log         *zap.Logger
}

// NewTelegramService creates a new TelegramService. baseURL is normally
// https://api.telegram.org.
func NewTelegramService(baseURL, botToken, adminChatID string, log *zap.Logger) *TelegramService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &TelegramService{
		client:      client,
		botToken:    botToken,
		adminChatID: adminChatID,
		log:         log.Named("telegram"),
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Enabled reports whether a bot token is configured.
func (s *TelegramService) Enabled() bool {
	return s.botToken != ""
}

// SendMessage sends an HTML message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if !s.Enabled() {
		return ErrTelegramDisabled
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"}).
		Post("/bot" + s.botToken + "/sendMessage")
	if err != nil {
		s.log.Warn("send failed", zap.Error(err))
		return fmt.Errorf("telegram: %w", err)
	}

	body := resp.Body()
	if !resp.IsSuccess() || !gjson.GetBytes(body, "ok").Bool() {
		description := gjson.GetBytes(body, "description").String()
		s.log.Warn("unexpected response",
			zap.Int("status", resp.StatusCode()),
			zap.String("description", description),
		)
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode(), description)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat. It is a no-op when no admin
// chat is configured.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" || !s.Enabled() {
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// OrderNotification contains order data for the admin chat.
type OrderNotification struct {
	OrderID      string
	VendorName   string
	VendorPhone  string
	SupplierName string
	Items        []OrderItemNotification
	Total        models.Money
	DeliveryType string
}

// OrderItemNotification is one line of an OrderNotification.
type OrderItemNotification struct {
	Name     string
	Quantity string
	Unit     string
	Price    models.Money
}

// FormatRupees renders an amount with thousand separators, e.g. ₹2,450.00.
func FormatRupees(amount models.Money) string {
	fixed := amount.String()
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, frac = fixed[:i], fixed[i:]
	}

	var result strings.Builder
	length := len(intPart)
	for i, digit := range intPart {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return sign + "₹" + result.String() + frac
}

// NotifyNewOrder tells the admin chat about a new order.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order OrderNotification) error {
	var items strings.Builder
	for i, item := range order.Items {
		fmt.Fprintf(&items, "%d. <b>%s</b>\n   %s %s x %s\n",
			i+1, item.Name, item.Quantity, item.Unit, FormatRupees(item.Price))
	}

	message := fmt.Sprintf(`<b>🛒 New order</b>
<b>📋 Order:</b> %s
<b>👤 Vendor:</b> %s (%s)
<b>🏪 Supplier:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
<b>🚚 Delivery:</b> %s`,
		order.OrderID,
		order.VendorName,
		order.VendorPhone,
		order.SupplierName,
		items.String(),
		FormatRupees(order.Total),
		order.DeliveryType,
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}

// ComplaintNotification contains complaint data for the admin chat.
type ComplaintNotification struct {
	ComplaintID string
	VendorName  string
	Title       string
	Description string
	OrderID     string
}

// NotifyNewComplaint tells the admin chat about a new complaint.
func (s *TelegramService) NotifyNewComplaint(ctx context.Context, complaint ComplaintNotification) error {
	order := complaint.OrderID
	if order == "" {
		order = "-"
	}
	message := fmt.Sprintf(`<b>⚠️ New complaint</b>
<b>📋 Complaint:</b> %s
<b>👤 Vendor:</b> %s
<b>🧾 Order:</b> %s
<b>%s</b>
%s`,
		complaint.ComplaintID,
		complaint.VendorName,
		order,
		complaint.Title,
		complaint.Description,
	)

	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
