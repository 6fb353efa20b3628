package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

// ComplaintHandler serves the vendor complaint center.
type ComplaintHandler struct {
	store    *store.Store
	notifier *services.Notifier
	metrics  *metrics.Metrics
}

func NewComplaintHandler(s *store.Store, notifier *services.Notifier, m *metrics.Metrics) *ComplaintHandler {
	return &ComplaintHandler{store: s, notifier: notifier, metrics: m}
}

type createComplaintRequest struct {
	VendorID    string  `json:"vendor_id" validate:"required"`
	OrderID     *string `json:"order_id" validate:"omitempty,min=1"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	ImageURL    string  `json:"image_url" validate:"omitempty,max=500"`
	Status      string  `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Response    string  `json:"response"`
}

// CreateComplaint files a complaint. A referenced order must belong to the
// complaining vendor.
func (h *ComplaintHandler) CreateComplaint(c *fiber.Ctx) error {
	var req createComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	if req.Status == "" {
		req.Status = models.ComplaintOpen
	}

	var complaint *models.Complaint
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Vendors, req.VendorID, "vendor"); err != nil {
			return err
		}
		if req.OrderID != nil {
			order, err := lookup(ctx, h.store.Orders, *req.OrderID, "order")
			if err != nil {
				return err
			}
			if order.VendorID != req.VendorID {
				return badRequest("order does not belong to this vendor")
			}
		}
		var err error
		complaint, err = h.store.Complaints.Create(ctx, &models.Complaint{
			VendorID:    req.VendorID,
			OrderID:     req.OrderID,
			Title:       req.Title,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Status:      req.Status,
			Response:    req.Response,
		})
		return err
	})
	if err != nil {
		return err
	}

	h.metrics.ComplaintOpened()
	h.notifier.ComplaintOpened(ctx, complaint)
	return respondCreated(c, complaint)
}

func (h *ComplaintHandler) GetComplaint(c *fiber.Ctx) error {
	return getOne(c, h.store.Complaints, "id", "complaint")
}

func (h *ComplaintHandler) ListByVendor(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	if _, err := lookup(c.UserContext(), h.store.Vendors, vendorID, "vendor"); err != nil {
		return err
	}
	return listBy(c, h.store.Complaints, "vendor_id", vendorID)
}

type updateComplaintRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=500"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Response    *string `json:"response"`
}

// UpdateComplaint applies a supplier response or status change. The store
// derives resolved_at.
func (h *ComplaintHandler) UpdateComplaint(c *fiber.Ctx) error {
	var req updateComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	var complaint *models.Complaint
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Complaints, id, "complaint"); err != nil {
			return err
		}
		var err error
		complaint, err = h.store.Complaints.Update(ctx, id, func(cm *models.Complaint) error {
			if req.Title != nil {
				cm.Title = *req.Title
			}
			if req.Description != nil {
				cm.Description = *req.Description
			}
			if req.ImageURL != nil {
				cm.ImageURL = *req.ImageURL
			}
			if req.Status != nil {
				cm.Status = *req.Status
			}
			if req.Response != nil {
				cm.Response = *req.Response
			}
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}

	if req.Status != nil || req.Response != nil {
		h.notifier.ComplaintUpdated(ctx, complaint)
	}
	return respond(c, complaint)
}
