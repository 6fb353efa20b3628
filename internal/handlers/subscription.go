package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

// SubscriptionHandler manages recurring supply agreements.
type SubscriptionHandler struct {
	store *store.Store
	now   func() time.Time
}

func NewSubscriptionHandler(s *store.Store) *SubscriptionHandler {
	return &SubscriptionHandler{store: s, now: time.Now}
}

type createSubscriptionRequest struct {
	VendorID          string              `json:"vendor_id" validate:"required"`
	SupplierID        string              `json:"supplier_id" validate:"required"`
	BundleID          *string             `json:"bundle_id" validate:"omitempty,min=1"`
	CustomItems       []models.BundleItem `json:"custom_items"`
	DeliveryFrequency string              `json:"delivery_frequency" validate:"required,oneof=weekly monthly"`
	IsActive          *bool               `json:"is_active"`
	StartDate         *time.Time          `json:"start_date"`
	NextDelivery      *time.Time          `json:"next_delivery"`
}

// CreateSubscription registers a recurring order. Without an explicit
// next_delivery the first run is one cadence after the start date.
func (h *SubscriptionHandler) CreateSubscription(c *fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.BundleID == nil && len(req.CustomItems) == 0 {
		return badRequest("bundle_id or custom_items is required")
	}
	custom := make([]services.ItemRequest, 0, len(req.CustomItems))
	for _, item := range req.CustomItems {
		if item.ProductID == "" || !item.Quantity.IsPositive() {
			return badRequest("custom_items need a product_id and a positive quantity")
		}
		custom = append(custom, services.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity, Unit: item.Unit})
	}
	ctx := c.UserContext()

	start := h.now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	next := models.NextDeliveryAfter(start, req.DeliveryFrequency)
	if req.NextDelivery != nil {
		next = *req.NextDelivery
	}

	var sub *models.Subscription
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Vendors, req.VendorID, "vendor"); err != nil {
			return err
		}
		if _, err := lookup(ctx, h.store.Suppliers, req.SupplierID, "supplier"); err != nil {
			return err
		}
		if req.BundleID != nil {
			if _, err := lookup(ctx, h.store.Bundles, *req.BundleID, "bundle"); err != nil {
				return err
			}
		}
		// custom items must be orderable from this supplier when the subscription rolls
		if _, err := services.PriceOrderItems(ctx, h.store, req.SupplierID, custom); err != nil {
			return orderError(err)
		}
		var err error
		sub, err = h.store.Subscriptions.Create(ctx, &models.Subscription{
			VendorID:          req.VendorID,
			SupplierID:        req.SupplierID,
			BundleID:          req.BundleID,
			CustomItems:       req.CustomItems,
			DeliveryFrequency: req.DeliveryFrequency,
			IsActive:          req.IsActive == nil || *req.IsActive,
			StartDate:         start,
			NextDelivery:      &next,
		})
		return err
	})
	if err != nil {
		return err
	}
	return respondCreated(c, sub)
}

func (h *SubscriptionHandler) GetSubscription(c *fiber.Ctx) error {
	return getOne(c, h.store.Subscriptions, "id", "subscription")
}

func (h *SubscriptionHandler) ListByVendor(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	if _, err := lookup(c.UserContext(), h.store.Vendors, vendorID, "vendor"); err != nil {
		return err
	}
	return listBy(c, h.store.Subscriptions, "vendor_id", vendorID)
}

type updateSubscriptionRequest struct {
	DeliveryFrequency *string    `json:"delivery_frequency" validate:"omitempty,oneof=weekly monthly"`
	IsActive          *bool      `json:"is_active"`
	NextDelivery      *time.Time `json:"next_delivery"`
}

func (h *SubscriptionHandler) UpdateSubscription(c *fiber.Ctx) error {
	var req updateSubscriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var sub *models.Subscription
	err := h.store.Atomic(func() error {
		if _, err := lookup(c.UserContext(), h.store.Subscriptions, c.Params("id"), "subscription"); err != nil {
			return err
		}
		var err error
		sub, err = h.store.Subscriptions.Update(c.UserContext(), c.Params("id"), func(s *models.Subscription) error {
			if req.DeliveryFrequency != nil {
				s.DeliveryFrequency = *req.DeliveryFrequency
			}
			if req.IsActive != nil {
				s.IsActive = *req.IsActive
			}
			if req.NextDelivery != nil {
				s.NextDelivery = req.NextDelivery
			}
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return respond(c, sub)
}
