package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/config"
	"github.com/example/supplysetu/internal/logger"
	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/middleware"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
	"github.com/example/supplysetu/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	store    *store.Store
	cfg      *config.Config
	verifier services.CodeVerifier
	metrics  *metrics.Metrics
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(s *store.Store, cfg *config.Config, verifier services.CodeVerifier, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{store: s, cfg: cfg, verifier: verifier, metrics: m}
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

// Login finds or creates the user behind a phone number. Test numbers are
// verified on the spot; everyone else is sent a one-time code.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	isTest := h.cfg.IsTestNumber(req.PhoneNumber)

	var user *models.User
	err := h.store.Atomic(func() error {
		existing, err := h.store.Users.FindOne(ctx, "phone_number", req.PhoneNumber)
		switch {
		case errors.Is(err, store.ErrNotFound):
			user, err = h.store.Users.Create(ctx, &models.User{
				PhoneNumber: req.PhoneNumber,
				Role:        models.RoleVendor,
				IsVerified:  isTest,
			})
			return err
		case err != nil:
			return err
		}

		user = existing
		if isTest && !user.IsVerified {
			user, err = h.store.Users.Update(ctx, user.ID, func(u *models.User) error {
				u.IsVerified = true
				return nil
			})
		}
		return err
	})
	if err != nil {
		return err
	}

	if isTest {
		token, err := h.token(user)
		if err != nil {
			return err
		}
		h.metrics.Login("verified")
		return c.JSON(fiber.Map{
			"success":        true,
			"user":           user,
			"is_test_number": true,
			"message":        "Test number - automatically verified",
			"token":          token,
		})
	}

	if err := h.verifier.Issue(ctx, user.PhoneNumber); err != nil {
		logger.FromContext(c).Error("failed to issue code", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send verification code")
	}
	h.metrics.Login("pending")

	return c.JSON(fiber.Map{
		"success":        true,
		"user":           user,
		"is_test_number": false,
		"message":        "OTP sent to your phone number",
	})
}

type verifyRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
	OTP         string `json:"otp" validate:"required"`
}

// VerifyOTP checks a one-time code and establishes the session.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	user, err := h.store.Users.FindOne(ctx, "phone_number", req.PhoneNumber)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		return err
	}

	valid, err := h.verifier.Verify(ctx, req.PhoneNumber, req.OTP)
	if err != nil {
		return err
	}
	if !valid {
		h.metrics.Login("rejected")
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired code")
	}

	user, err = h.store.Users.Update(ctx, user.ID, func(u *models.User) error {
		u.IsVerified = true
		return nil
	})
	if err != nil {
		return err
	}

	token, err := h.token(user)
	if err != nil {
		return err
	}
	h.metrics.Login("verified")

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// Me returns the user behind the session token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	user, err := h.store.Users.Get(c.UserContext(), userID)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "unknown user")
	}
	if err != nil {
		return err
	}
	return respond(c, user)
}

// CurrentRole resolves the role of userID for middleware.RequireRole.
func (h *AuthHandler) CurrentRole(c *fiber.Ctx, userID string) (string, error) {
	user, err := h.store.Users.Get(c.UserContext(), userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (h *AuthHandler) token(user *models.User) (string, error) {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}
	return token, nil
}
