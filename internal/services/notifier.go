package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

// Notifier turns domain events into user notifications and admin chat
// messages. Failures are logged and never reach the caller.
type Notifier struct {
	store    *store.Store
	telegram *TelegramService
	log      *zap.Logger
	wg       sync.WaitGroup
}

// NewNotifier creates a Notifier. telegram may be nil.
func NewNotifier(s *store.Store, telegram *TelegramService, log *zap.Logger) *Notifier {
	return &Notifier{store: s, telegram: telegram, log: log.Named("notifier")}
}

// Wait blocks until pending admin messages have been sent.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) notify(ctx context.Context, note models.Notification) {
	if note.UserID == "" {
		return
	}
	if _, err := n.store.Notifications.Create(ctx, &note); err != nil {
		n.log.Warn("failed to store notification", zap.String("user_id", note.UserID), zap.Error(err))
	}
}

func (n *Notifier) toAdmin(ctx context.Context, send func(context.Context, *TelegramService) error) {
	if n.telegram == nil || !n.telegram.Enabled() {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := send(ctx, n.telegram); err != nil {
			n.log.Warn("failed to notify admin chat", zap.Error(err))
		}
	}()
}

func (n *Notifier) vendorUser(ctx context.Context, vendorID string) (*models.User, bool) {
	vendor, err := n.store.Vendors.Get(ctx, vendorID)
	if err != nil {
		return nil, false
	}
	user, err := n.store.Users.Get(ctx, vendor.UserID)
	if err != nil {
		return nil, false
	}
	return user, true
}

func (n *Notifier) supplierUser(ctx context.Context, supplierID string) (*models.User, bool) {
	supplier, err := n.store.Suppliers.Get(ctx, supplierID)
	if err != nil {
		return nil, false
	}
	user, err := n.store.Users.Get(ctx, supplier.UserID)
	if err != nil {
		return nil, false
	}
	return user, true
}

// OrderPlaced notifies the supplier and the admin chat about a new order.
func (n *Notifier) OrderPlaced(ctx context.Context, order *models.Order) {
	supplier, ok := n.supplierUser(ctx, order.SupplierID)
	if ok {
		n.notify(ctx, models.Notification{
			UserID:       supplier.ID,
			Title:        "New order received",
			TitleHindi:   "नया ऑर्डर मिला",
			Message:      fmt.Sprintf("Order %s for %s is waiting for your response", order.ID, order.TotalAmount),
			MessageHindi: fmt.Sprintf("₹%s का ऑर्डर %s आपके जवाब का इंतज़ार कर रहा है", order.TotalAmount, order.ID),
			Type:         models.NotificationOrder,
		})
	}

	vendor, _ := n.vendorUser(ctx, order.VendorID)
	msg := OrderNotification{
		OrderID:      order.ID,
		Total:        order.TotalAmount,
		DeliveryType: order.DeliveryType,
	}
	if vendor != nil {
		msg.VendorName, msg.VendorPhone = vendor.BusinessName, vendor.PhoneNumber
		if msg.VendorName == "" {
			msg.VendorName = vendor.Name
		}
	}
	if supplier != nil {
		msg.SupplierName = supplier.BusinessName
	}
	for _, item := range order.Items {
		name := item.ProductID
		if p, err := n.store.Products.Get(ctx, item.ProductID); err == nil {
			name = p.Name
		}
		msg.Items = append(msg.Items, OrderItemNotification{
			Name:     name,
			Quantity: item.Quantity.String(),
			Unit:     item.Unit,
			Price:    item.Price,
		})
	}
	n.toAdmin(ctx, func(ctx context.Context, tg *TelegramService) error {
		return tg.NotifyNewOrder(ctx, msg)
	})
}

// OrderStatusChanged notifies the vendor about a status change.
func (n *Notifier) OrderStatusChanged(ctx context.Context, order *models.Order) {
	vendor, ok := n.vendorUser(ctx, order.VendorID)
	if !ok {
		return
	}
	n.notify(ctx, models.Notification{
		UserID:       vendor.ID,
		Title:        "Order " + order.Status,
		TitleHindi:   "ऑर्डर अपडेट",
		Message:      fmt.Sprintf("Your order %s is now %s", order.ID, order.Status),
		MessageHindi: fmt.Sprintf("आपका ऑर्डर %s अब %s है", order.ID, order.Status),
		Type:         models.NotificationOrder,
	})
}

// DeliveryStatusChanged notifies the vendor who placed the delivered order.
func (n *Notifier) DeliveryStatusChanged(ctx context.Context, delivery *models.Delivery) {
	order, err := n.store.Orders.Get(ctx, delivery.OrderID)
	if err != nil {
		return
	}
	vendor, ok := n.vendorUser(ctx, order.VendorID)
	if !ok {
		return
	}
	n.notify(ctx, models.Notification{
		UserID:       vendor.ID,
		Title:        "Delivery " + delivery.Status,
		TitleHindi:   "डिलिवरी अपडेट",
		Message:      fmt.Sprintf("Delivery for order %s is %s", order.ID, delivery.Status),
		MessageHindi: fmt.Sprintf("ऑर्डर %s की डिलिवरी %s है", order.ID, delivery.Status),
		Type:         models.NotificationDelivery,
	})
}

// ComplaintOpened tells the admin chat about a new complaint.
func (n *Notifier) ComplaintOpened(ctx context.Context, complaint *models.Complaint) {
	msg := ComplaintNotification{
		ComplaintID: complaint.ID,
		Title:       complaint.Title,
		Description: complaint.Description,
	}
	if complaint.OrderID != nil {
		msg.OrderID = *complaint.OrderID
	}
	if vendor, ok := n.vendorUser(ctx, complaint.VendorID); ok {
		msg.VendorName = vendor.BusinessName
	}
	n.toAdmin(ctx, func(ctx context.Context, tg *TelegramService) error {
		return tg.NotifyNewComplaint(ctx, msg)
	})
}

// ComplaintUpdated notifies the vendor about a response or status change.
func (n *Notifier) ComplaintUpdated(ctx context.Context, complaint *models.Complaint) {
	vendor, ok := n.vendorUser(ctx, complaint.VendorID)
	if !ok {
		return
	}
	n.notify(ctx, models.Notification{
		UserID:       vendor.ID,
		Title:        "Complaint " + complaint.Status,
		TitleHindi:   "शिकायत अपडेट",
		Message:      fmt.Sprintf("%q is now %s", complaint.Title, complaint.Status),
		MessageHindi: fmt.Sprintf("%q अब %s है", complaint.Title, complaint.Status),
		Type:         models.NotificationComplaint,
	})
}

// PauseExpired notifies the vendor that deliveries resume.
func (n *Notifier) PauseExpired(ctx context.Context, pause *models.DeliveryPause) {
	vendor, ok := n.vendorUser(ctx, pause.VendorID)
	if !ok {
		return
	}
	n.notify(ctx, models.Notification{
		UserID:       vendor.ID,
		Title:        "Deliveries resumed",
		TitleHindi:   "डिलिवरी फिर से शुरू",
		Message:      "Your delivery pause has ended",
		MessageHindi: "आपका डिलिवरी विराम समाप्त हो गया है",
		Type:         models.NotificationDelivery,
	})
}
