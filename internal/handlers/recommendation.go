package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/logger"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

// advisorTimeout bounds a direct advisor call.
const advisorTimeout = 10 * time.Second

// RecommendationHandler exposes the advisory service: bundle suggestions per
// stall type and freshness classification of product photos.
type RecommendationHandler struct {
	store   *store.Store
	advisor services.Advisor
}

// NewRecommendationHandler constructs RecommendationHandler.
func NewRecommendationHandler(s *store.Store, advisor services.Advisor) *RecommendationHandler {
	return &RecommendationHandler{store: s, advisor: advisor}
}

type bundleQuery struct {
	StallType    string `query:"stall_type" json:"stall_type" validate:"required"`
	Season       string `query:"season" json:"season" validate:"omitempty,oneof=summer winter monsoon"`
	Personalized bool   `query:"personalized" json:"personalized"`
}

// stallKey accepts either a stall type slug or a stall type id.
func (h *RecommendationHandler) stallKey(ctx context.Context, ref string) (string, error) {
	st, err := h.store.StallTypes.Get(ctx, ref)
	if err == nil {
		return st.Slug, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	return ref, nil
}

// Bundles returns the recommended bundles for ?stall_type=.
func (h *RecommendationHandler) Bundles(c *fiber.Ctx) error {
	var q bundleQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest("invalid query parameters")
	}
	if err := validateStruct(&q); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), advisorTimeout)
	defer cancel()

	key, err := h.stallKey(ctx, q.StallType)
	if err != nil {
		return err
	}
	bundles, err := h.advisor.RecommendBundles(ctx, key, services.RecommendOptions{
		Season:       q.Season,
		Personalized: q.Personalized,
	})
	if err != nil {
		logger.FromContext(c).Error("bundle recommendation failed", zap.String("stall_type", key), zap.Error(err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "recommendations are unavailable right now")
	}
	return respond(c, bundles)
}

type freshnessRequest struct {
	ImageURL string `json:"image_url" validate:"required,max=500"`
}

// Freshness classifies the product photo behind image_url.
func (h *RecommendationHandler) Freshness(c *fiber.Ctx) error {
	var req freshnessRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), advisorTimeout)
	defer cancel()

	result, err := h.advisor.AnalyzeFreshness(ctx, req.ImageURL)
	if err != nil {
		logger.FromContext(c).Error("freshness analysis failed", zap.String("image_url", req.ImageURL), zap.Error(err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "freshness analysis is unavailable right now")
	}
	return respond(c, result)
}

// validFreshness reports whether status is a known freshness classification.
func validFreshness(status string) bool {
	switch status {
	case models.FreshnessFresh, models.FreshnessBlurred, models.FreshnessLowQuality:
		return true
	}
	return false
}
