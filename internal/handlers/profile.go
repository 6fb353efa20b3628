package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

// ProfileHandler manages vendor and supplier onboarding profiles.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// onboardable loads userID and checks that it holds role and has no profile yet.
func (h *ProfileHandler) onboardable(ctx context.Context, userID, role string) error {
	user, err := lookup(ctx, h.store.Users, userID, "user")
	if err != nil {
		return err
	}
	if user.Role != role {
		return badRequest("user role is not " + role)
	}

	vendor, err := h.store.Vendors.FindOne(ctx, "user_id", userID)
	if err == nil && vendor != nil {
		return badRequest("user already has a vendor profile")
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	supplier, err := h.store.Suppliers.FindOne(ctx, "user_id", userID)
	if err == nil && supplier != nil {
		return badRequest("user already has a supplier profile")
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Vendors

type createVendorRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	StallTypeID string `json:"stall_type_id" validate:"required"`
	Location    string `json:"location" validate:"max=200"`
	IsOnboarded *bool  `json:"is_onboarded"`
}

func (h *ProfileHandler) CreateVendor(c *fiber.Ctx) error {
	var req createVendorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	var vendor *models.Vendor
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.StallTypes, req.StallTypeID, "stall type"); err != nil {
			return err
		}
		if err := h.onboardable(ctx, req.UserID, models.RoleVendor); err != nil {
			return err
		}

		onboarded := true
		if req.IsOnboarded != nil {
			onboarded = *req.IsOnboarded
		}
		var err error
		vendor, err = h.store.Vendors.Create(ctx, &models.Vendor{
			UserID:      req.UserID,
			StallTypeID: req.StallTypeID,
			Location:    req.Location,
			IsOnboarded: onboarded,
		})
		return err
	})
	if err != nil {
		return err
	}
	return respondCreated(c, vendor)
}

func (h *ProfileHandler) GetVendor(c *fiber.Ctx) error {
	return getOne(c, h.store.Vendors, "id", "vendor")
}

func (h *ProfileHandler) GetVendorByUser(c *fiber.Ctx) error {
	vendor, err := h.store.Vendors.FindOne(c.UserContext(), "user_id", c.Params("userId"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "vendor not found")
	}
	if err != nil {
		return err
	}
	return respond(c, vendor)
}

type updateVendorRequest struct {
	StallTypeID *string `json:"stall_type_id" validate:"omitempty,min=1"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	IsOnboarded *bool   `json:"is_onboarded"`
}

func (h *ProfileHandler) UpdateVendor(c *fiber.Ctx) error {
	var req updateVendorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	var vendor *models.Vendor
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Vendors, id, "vendor"); err != nil {
			return err
		}
		if req.StallTypeID != nil {
			if _, err := lookup(ctx, h.store.StallTypes, *req.StallTypeID, "stall type"); err != nil {
				return err
			}
		}

		var err error
		vendor, err = h.store.Vendors.Update(ctx, id, func(v *models.Vendor) error {
			if req.StallTypeID != nil {
				v.StallTypeID = *req.StallTypeID
			}
			if req.Location != nil {
				v.Location = *req.Location
			}
			if req.IsOnboarded != nil {
				v.IsOnboarded = *req.IsOnboarded
			}
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return respond(c, vendor)
}

// Suppliers

type createSupplierRequest struct {
	UserID        string   `json:"user_id" validate:"required"`
	DeliveryZones []string `json:"delivery_zones" validate:"dive,required,max=100"`
}

func (h *ProfileHandler) CreateSupplier(c *fiber.Ctx) error {
	var req createSupplierRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	var supplier *models.Supplier
	err := h.store.Atomic(func() error {
		if err := h.onboardable(ctx, req.UserID, models.RoleSupplier); err != nil {
			return err
		}
		zones := req.DeliveryZones
		if zones == nil {
			zones = []string{}
		}
		var err error
		supplier, err = h.store.Suppliers.Create(ctx, &models.Supplier{
			UserID:        req.UserID,
			DeliveryZones: zones,
		})
		return err
	})
	if err != nil {
		return err
	}
	return respondCreated(c, supplier)
}

func (h *ProfileHandler) ListSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.store.Suppliers.List(c.UserContext())
	if err != nil {
		return err
	}
	return paginated(c, suppliers)
}

func (h *ProfileHandler) GetSupplier(c *fiber.Ctx) error {
	return getOne(c, h.store.Suppliers, "id", "supplier")
}

func (h *ProfileHandler) GetSupplierByUser(c *fiber.Ctx) error {
	supplier, err := h.store.Suppliers.FindOne(c.UserContext(), "user_id", c.Params("userId"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "supplier not found")
	}
	if err != nil {
		return err
	}
	return respond(c, supplier)
}

type updateSupplierRequest struct {
	DeliveryZones *[]string `json:"delivery_zones" validate:"omitempty,dive,required,max=100"`
	IsVerified    *bool     `json:"is_verified"`
}

func (h *ProfileHandler) UpdateSupplier(c *fiber.Ctx) error {
	var req updateSupplierRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	supplier, err := h.store.Suppliers.Update(c.UserContext(), c.Params("id"), func(s *models.Supplier) error {
		if req.DeliveryZones != nil {
			s.DeliveryZones = *req.DeliveryZones
		}
		if req.IsVerified != nil {
			s.IsVerified = *req.IsVerified
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "supplier not found")
	}
	if err != nil {
		return err
	}
	return respond(c, supplier)
}
