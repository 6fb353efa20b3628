package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

// UserHandler manages user accounts.
type UserHandler struct {
	store *store.Store
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(s *store.Store) *UserHandler {
	return &UserHandler{store: s}
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	return getOne(c, h.store.Users, "id", "user")
}

type updateUserRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=120"`
	BusinessName *string `json:"business_name" validate:"omitempty,max=160"`
	Role         *string `json:"role" validate:"omitempty,oneof=vendor supplier"`
	IsVerified   *bool   `json:"is_verified"`
}

// UpdateUser applies onboarding edits. A user that already owns a vendor or
// supplier profile cannot switch roles.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	id := c.Params("id")

	var user *models.User
	err := h.store.Atomic(func() error {
		current, err := lookup(ctx, h.store.Users, id, "user")
		if err != nil {
			return err
		}

		if req.Role != nil && *req.Role != current.Role {
			if has, err := h.hasProfile(c, current); err != nil {
				return err
			} else if has {
				return badRequest("role cannot change after onboarding")
			}
		}

		user, err = h.store.Users.Update(ctx, id, func(u *models.User) error {
			if req.Name != nil {
				u.Name = *req.Name
			}
			if req.BusinessName != nil {
				u.BusinessName = *req.BusinessName
			}
			if req.Role != nil {
				u.Role = *req.Role
			}
			if req.IsVerified != nil {
				u.IsVerified = *req.IsVerified
			}
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return respond(c, user)
}

func (h *UserHandler) hasProfile(c *fiber.Ctx, user *models.User) (bool, error) {
	ctx := c.UserContext()
	vendors, err := h.store.Vendors.Find(ctx, "user_id", user.ID)
	if err != nil {
		return false, err
	}
	suppliers, err := h.store.Suppliers.Find(ctx, "user_id", user.ID)
	if err != nil {
		return false, err
	}
	return len(vendors) > 0 || len(suppliers) > 0, nil
}
