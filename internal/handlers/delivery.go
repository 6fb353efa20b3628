package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

// DeliveryHandler serves the delivery calendar: scheduled deliveries and
// vendor delivery pauses.
type DeliveryHandler struct {
	store    *store.Store
	notifier *services.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewDeliveryHandler(s *store.Store, notifier *services.Notifier, m *metrics.Metrics) *DeliveryHandler {
	return &DeliveryHandler{store: s, notifier: notifier, metrics: m, now: time.Now}
}

type createDeliveryRequest struct {
	OrderID       string     `json:"order_id" validate:"required"`
	ScheduledDate *time.Time `json:"scheduled_date" validate:"required"`
	Status        string     `json:"status" validate:"omitempty,oneof=scheduled in_transit delivered failed"`
	Notes         string     `json:"notes" validate:"max=500"`
}

func (h *DeliveryHandler) CreateDelivery(c *fiber.Ctx) error {
	var req createDeliveryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	status := req.Status
	if status == "" {
		status = models.DeliveryScheduled
	}
	delivery := &models.Delivery{
		OrderID:       req.OrderID,
		ScheduledDate: *req.ScheduledDate,
		Status:        status,
		Notes:         req.Notes,
	}
	if status == models.DeliveryDelivered {
		now := h.now()
		delivery.ActualDate = &now
	}

	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Orders, req.OrderID, "order"); err != nil {
			return err
		}
		var err error
		delivery, err = h.store.Deliveries.Create(ctx, delivery)
		return err
	})
	if err != nil {
		return err
	}
	return respondCreated(c, delivery)
}

func (h *DeliveryHandler) ListByOrder(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if _, err := lookup(c.UserContext(), h.store.Orders, orderID, "order"); err != nil {
		return err
	}
	return listBy(c, h.store.Deliveries, "order_id", orderID)
}

type updateDeliveryRequest struct {
	ScheduledDate *time.Time `json:"scheduled_date"`
	Status        *string    `json:"status" validate:"omitempty,oneof=scheduled in_transit delivered failed"`
	Notes         *string    `json:"notes" validate:"omitempty,max=500"`
}

// UpdateDelivery advances a delivery. Reaching delivered stamps the actual
// date once and completes an accepted order.
func (h *DeliveryHandler) UpdateDelivery(c *fiber.Ctx) error {
	var req updateDeliveryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	var (
		delivery  *models.Delivery
		completed *models.Order
		changed   bool
	)
	err := h.store.Atomic(func() error {
		current, err := lookup(ctx, h.store.Deliveries, id, "delivery")
		if err != nil {
			return err
		}
		next := current.Status
		if req.Status != nil {
			next = *req.Status
		}
		if !models.CanAdvanceDelivery(current.Status, next) {
			return badRequest(fmt.Sprintf("cannot change delivery status from %s to %s", current.Status, next))
		}
		changed = next != current.Status

		// a delivered delivery completes its accepted order
		var order *models.Order
		if changed && next == models.DeliveryDelivered {
			order, err = h.store.Orders.Get(ctx, current.OrderID)
			if errors.Is(err, store.ErrNotFound) {
				order = nil
			} else if err != nil {
				return err
			}
		}

		delivery, err = h.store.Deliveries.Update(ctx, id, func(d *models.Delivery) error {
			d.Status = next
			if req.ScheduledDate != nil {
				d.ScheduledDate = *req.ScheduledDate
			}
			if req.Notes != nil {
				d.Notes = *req.Notes
			}
			if d.Status == models.DeliveryDelivered && d.ActualDate == nil {
				now := h.now()
				d.ActualDate = &now
			}
			return nil
		})
		if err != nil || order == nil || order.Status != models.OrderAccepted {
			return err
		}
		completed, err = h.store.Orders.Update(ctx, order.ID, func(o *models.Order) error {
			o.Status = models.OrderDelivered
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}

	if changed {
		h.notifier.DeliveryStatusChanged(ctx, delivery)
	}
	if completed != nil {
		h.metrics.OrderTransition(completed.Status)
		h.notifier.OrderStatusChanged(ctx, completed)
	}
	return respond(c, delivery)
}

type createPauseRequest struct {
	VendorID  string     `json:"vendor_id" validate:"required"`
	StartDate *time.Time `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date" validate:"required"`
	Reason    string     `json:"reason" validate:"max=500"`
	IsActive  *bool      `json:"is_active"`
}

// activePause returns the vendor's active pause other than exclude, or nil.
func (h *DeliveryHandler) activePause(c *fiber.Ctx, vendorID, exclude string) (*models.DeliveryPause, error) {
	pauses, err := h.store.DeliveryPauses.Find(c.UserContext(), "vendor_id", vendorID)
	if err != nil {
		return nil, err
	}
	for i := range pauses {
		if pauses[i].IsActive && pauses[i].ID != exclude {
			return &pauses[i], nil
		}
	}
	return nil, nil
}

func (h *DeliveryHandler) CreatePause(c *fiber.Ctx) error {
	var req createPauseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.EndDate.Before(*req.StartDate) {
		return badRequest("end_date must not be before start_date")
	}
	ctx := c.UserContext()
	active := req.IsActive == nil || *req.IsActive

	var pause *models.DeliveryPause
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Vendors, req.VendorID, "vendor"); err != nil {
			return err
		}
		if active {
			existing, err := h.activePause(c, req.VendorID, "")
			if err != nil {
				return err
			}
			if existing != nil {
				return badRequest("vendor already has an active delivery pause")
			}
		}
		var err error
		pause, err = h.store.DeliveryPauses.Create(ctx, &models.DeliveryPause{
			VendorID:  req.VendorID,
			StartDate: *req.StartDate,
			EndDate:   *req.EndDate,
			Reason:    req.Reason,
			IsActive:  active,
		})
		return err
	})
	if err != nil {
		return err
	}
	return respondCreated(c, pause)
}

// GetActivePause responds with the vendor's active pause, or null data when
// deliveries are running normally.
func (h *DeliveryHandler) GetActivePause(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	if _, err := lookup(c.UserContext(), h.store.Vendors, vendorID, "vendor"); err != nil {
		return err
	}
	pause, err := h.activePause(c, vendorID, "")
	if err != nil {
		return err
	}
	return respond(c, pause)
}

type updatePauseRequest struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Reason    *string    `json:"reason" validate:"omitempty,max=500"`
	IsActive  *bool      `json:"is_active"`
}

func (h *DeliveryHandler) UpdatePause(c *fiber.Ctx) error {
	var req updatePauseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	var pause *models.DeliveryPause
	err := h.store.Atomic(func() error {
		current, err := lookup(ctx, h.store.DeliveryPauses, id, "delivery pause")
		if err != nil {
			return err
		}
		if req.IsActive != nil && *req.IsActive && !current.IsActive {
			existing, err := h.activePause(c, current.VendorID, current.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return badRequest("vendor already has an active delivery pause")
			}
		}

		pause, err = h.store.DeliveryPauses.Update(ctx, id, func(p *models.DeliveryPause) error {
			if req.StartDate != nil {
				p.StartDate = *req.StartDate
			}
			if req.EndDate != nil {
				p.EndDate = *req.EndDate
			}
			if req.Reason != nil {
				p.Reason = *req.Reason
			}
			if req.IsActive != nil {
				p.IsActive = *req.IsActive
			}
			if p.EndDate.Before(p.StartDate) {
				return badRequest("end_date must not be before start_date")
			}
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return respond(c, pause)
}
