package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

// CatalogHandler serves stall types and bundle templates.
type CatalogHandler struct {
	store *store.Store
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(s *store.Store) *CatalogHandler {
	return &CatalogHandler{store: s}
}

func (h *CatalogHandler) ListStallTypes(c *fiber.Ctx) error {
	items, err := h.store.StallTypes.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, items)
}

func (h *CatalogHandler) ListBundlesByStallType(c *fiber.Ctx) error {
	stallTypeID := c.Params("stallTypeId")
	if _, err := lookup(c.UserContext(), h.store.StallTypes, stallTypeID, "stall type"); err != nil {
		return err
	}
	items, err := h.store.Bundles.Find(c.UserContext(), "stall_type_id", stallTypeID)
	if err != nil {
		return err
	}
	return respond(c, items)
}

func (h *CatalogHandler) GetBundle(c *fiber.Ctx) error {
	return getOne(c, h.store.Bundles, "id", "bundle")
}

type bundleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0,lte=100000"`
	Unit      string          `json:"unit" validate:"max=20"`
}

type createBundleRequest struct {
	StallTypeID   string              `json:"stall_type_id" validate:"required"`
	Name          string              `json:"name" validate:"required,max=160"`
	NameHindi     string              `json:"name_hindi" validate:"required,max=160"`
	Items         []bundleItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalCost     *models.Money       `json:"total_cost" validate:"omitempty,gte=0,lte=99999999.99"`
	IsRecommended bool                `json:"is_recommended"`
}

// CreateBundle stores a bundle template. Without an explicit total_cost the
// total is priced from the current product listings.
func (h *CatalogHandler) CreateBundle(c *fiber.Ctx) error {
	var req createBundleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	var bundle *models.Bundle
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.StallTypes, req.StallTypeID, "stall type"); err != nil {
			return err
		}

		items := make([]models.BundleItem, 0, len(req.Items))
		total := models.MoneyFromDecimal(decimal.Zero)
		for _, item := range req.Items {
			product, err := lookup(ctx, h.store.Products, item.ProductID, "product "+item.ProductID)
			if err != nil {
				return err
			}
			unit := item.Unit
			if unit == "" {
				unit = product.Unit
			}
			items = append(items, models.BundleItem{ProductID: product.ID, Quantity: item.Quantity, Unit: unit})
			total = total.Add(product.Price.Mul(item.Quantity))
		}
		if req.TotalCost != nil {
			total = *req.TotalCost
		}
		if !total.Storable() {
			return badRequest("bundle total exceeds 99999999.99")
		}

		var err error
		bundle, err = h.store.Bundles.Create(ctx, &models.Bundle{
			StallTypeID:   req.StallTypeID,
			Name:          req.Name,
			NameHindi:     req.NameHindi,
			Items:         items,
			TotalCost:     total,
			IsRecommended: req.IsRecommended,
		})
		return err
	})
	if err != nil {
		return err
	}
	return respondCreated(c, bundle)
}
