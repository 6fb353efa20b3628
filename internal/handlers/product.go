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

// freshnessBudget bounds how long product creation waits for image analysis.
const freshnessBudget = 5 * time.Second

// ProductHandler exposes CRUD endpoints for supplier product listings.
type ProductHandler struct {
	store   *store.Store
	advisor services.Advisor
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(s *store.Store, advisor services.Advisor) *ProductHandler {
	return &ProductHandler{store: s, advisor: advisor}
}

// ListProducts lists every product, optionally narrowed by ?category=.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	if category := c.Query("category"); category != "" {
		return listBy(c, h.store.Products, "category", category)
	}
	products, err := h.store.Products.List(c.UserContext())
	if err != nil {
		return err
	}
	return paginated(c, products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	return getOne(c, h.store.Products, "id", "product")
}

func (h *ProductHandler) ListBySupplier(c *fiber.Ctx) error {
	supplierID := c.Params("supplierId")
	if _, err := lookup(c.UserContext(), h.store.Suppliers, supplierID, "supplier"); err != nil {
		return err
	}
	return listBy(c, h.store.Products, "supplier_id", supplierID)
}

type createProductRequest struct {
	SupplierID       string        `json:"supplier_id" validate:"required"`
	Name             string        `json:"name" validate:"required,max=160"`
	NameHindi        string        `json:"name_hindi" validate:"required,max=160"`
	Category         string        `json:"category" validate:"required,oneof=perishable non_perishable"`
	Price            *models.Money `json:"price" validate:"required,gte=0,lte=99999999.99"`
	Unit             string        `json:"unit" validate:"required,max=20"`
	StockLevel       int           `json:"stock_level" validate:"gte=0"`
	ImageURL         string        `json:"image_url" validate:"omitempty,max=500"`
	FreshnessStatus  string        `json:"freshness_status" validate:"omitempty,oneof=fresh blurred low_quality"`
	Description      string        `json:"description"`
	DescriptionHindi string        `json:"description_hindi"`
}

// CreateProduct lists a product. When an image is given without a freshness
// status the advisor classifies it; a failed analysis leaves the status empty.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	freshness := req.FreshnessStatus
	if freshness == "" && req.ImageURL != "" {
		freshness = h.classify(c, req.ImageURL)
	}

	var product *models.Product
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Suppliers, req.SupplierID, "supplier"); err != nil {
			return err
		}
		var err error
		product, err = h.store.Products.Create(ctx, &models.Product{
			SupplierID:       req.SupplierID,
			Name:             req.Name,
			NameHindi:        req.NameHindi,
			Category:         req.Category,
			Price:            *req.Price,
			Unit:             req.Unit,
			StockLevel:       req.StockLevel,
			ImageURL:         req.ImageURL,
			FreshnessStatus:  freshness,
			Description:      req.Description,
			DescriptionHindi: req.DescriptionHindi,
		})
		return err
	})
	if err != nil {
		return err
	}
	return respondCreated(c, product)
}

func (h *ProductHandler) classify(c *fiber.Ctx, imageURL string) string {
	ctx, cancel := context.WithTimeout(c.UserContext(), freshnessBudget)
	defer cancel()

	result, err := h.advisor.AnalyzeFreshness(ctx, imageURL)
	if err != nil {
		logger.FromContext(c).Warn("freshness analysis failed", zap.String("image_url", imageURL), zap.Error(err))
		return ""
	}
	if !validFreshness(result.Status) {
		return ""
	}
	return result.Status
}

type updateProductRequest struct {
	Name             *string       `json:"name" validate:"omitempty,min=1,max=160"`
	NameHindi        *string       `json:"name_hindi" validate:"omitempty,min=1,max=160"`
	Category         *string       `json:"category" validate:"omitempty,oneof=perishable non_perishable"`
	Price            *models.Money `json:"price" validate:"omitempty,gte=0,lte=99999999.99"`
	Unit             *string       `json:"unit" validate:"omitempty,min=1,max=20"`
	StockLevel       *int          `json:"stock_level" validate:"omitempty,gte=0"`
	ImageURL         *string       `json:"image_url" validate:"omitempty,max=500"`
	FreshnessStatus  *string       `json:"freshness_status" validate:"omitempty,oneof=fresh blurred low_quality"`
	Description      *string       `json:"description"`
	DescriptionHindi *string       `json:"description_hindi"`
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var req updateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	product, err := h.store.Products.Update(c.UserContext(), c.Params("id"), func(p *models.Product) error {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.NameHindi != nil {
			p.NameHindi = *req.NameHindi
		}
		if req.Category != nil {
			p.Category = *req.Category
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.Unit != nil {
			p.Unit = *req.Unit
		}
		if req.StockLevel != nil {
			p.StockLevel = *req.StockLevel
		}
		if req.ImageURL != nil {
			p.ImageURL = *req.ImageURL
		}
		if req.FreshnessStatus != nil {
			p.FreshnessStatus = *req.FreshnessStatus
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.DescriptionHindi != nil {
			p.DescriptionHindi = *req.DescriptionHindi
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		return err
	}
	return respond(c, product)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	existed, err := h.store.Products.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !existed {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}
	return c.JSON(fiber.Map{"success": true})
}

// RegisterProductRoutes mounts the product endpoints on router.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Post("/", h.CreateProduct)
	router.Get("/supplier/:supplierId", h.ListBySupplier)
	router.Get("/:id", h.GetProduct)
	router.Patch("/:id", h.UpdateProduct)
	router.Delete("/:id", h.DeleteProduct)
}
