package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

// NotificationHandler lists and acknowledges user notifications.
type NotificationHandler struct {
	store *store.Store
}

func NewNotificationHandler(s *store.Store) *NotificationHandler {
	return &NotificationHandler{store: s}
}

// ListByUser returns a user's notifications in creation order.
func (h *NotificationHandler) ListByUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if _, err := lookup(c.UserContext(), h.store.Users, userID, "user"); err != nil {
		return err
	}
	return listBy(c, h.store.Notifications, "user_id", userID)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")
	var note *models.Notification
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Notifications, id, "notification"); err != nil {
			return err
		}
		var err error
		note, err = h.store.Notifications.Update(ctx, id, func(n *models.Notification) error {
			n.IsRead = true
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return respond(c, note)
}
