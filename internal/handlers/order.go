package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/middleware"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OrderHandler handles order placement and the supplier-side lifecycle.
type OrderHandler struct {
	store    *store.Store
	notifier *services.Notifier
	metrics  *metrics.Metrics
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(s *store.Store, notifier *services.Notifier, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{store: s, notifier: notifier, metrics: m}
}

type orderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0,lte=100000"`
	Unit      string          `json:"unit" validate:"omitempty,max=20"`
	Price     *models.Money   `json:"price" validate:"omitempty,gte=0,lte=99999999.99"`
}

type createOrderRequest struct {
	VendorID     string             `json:"vendor_id" validate:"required"`
	SupplierID   string             `json:"supplier_id" validate:"required"`
	Items        []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryDate *time.Time         `json:"delivery_date"`
	DeliveryType string             `json:"delivery_type" validate:"required,oneof=weekly monthly"`
}

func toItemRequests(items []orderItemRequest) []services.ItemRequest {
	out := make([]services.ItemRequest, len(items))
	for i, item := range items {
		out[i] = services.ItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Price:     item.Price,
		}
	}
	return out
}

// orderError translates fulfilment errors into client errors.
func orderError(err error) error {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForeignProduct), errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrQuantityRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

// CreateOrder places a pending order. Prices default to the product listing
// and the total is always recomputed from the lines.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	var order *models.Order
	err := h.store.Atomic(func() error {
		if _, err := lookup(ctx, h.store.Vendors, req.VendorID, "vendor"); err != nil {
			return err
		}
		if _, err := lookup(ctx, h.store.Suppliers, req.SupplierID, "supplier"); err != nil {
			return err
		}
		items, err := services.PriceOrderItems(ctx, h.store, req.SupplierID, toItemRequests(req.Items))
		if err != nil {
			return orderError(err)
		}
		total := models.OrderTotal(items)
		if !total.Storable() {
			return badRequest("order total exceeds 99999999.99")
		}
		order, err = h.store.Orders.Create(ctx, &models.Order{
			VendorID:     req.VendorID,
			SupplierID:   req.SupplierID,
			Items:        items,
			TotalAmount:  total,
			Status:       models.OrderPending,
			DeliveryDate: req.DeliveryDate,
			DeliveryType: req.DeliveryType,
		})
		return err
	})
	if err != nil {
		return err
	}

	h.metrics.OrderCreated()
	h.notifier.OrderPlaced(ctx, order)
	return respondCreated(c, order)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	return getOne(c, h.store.Orders, "id", "order")
}

func (h *OrderHandler) ListByVendor(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	if _, err := lookup(c.UserContext(), h.store.Vendors, vendorID, "vendor"); err != nil {
		return err
	}
	return listBy(c, h.store.Orders, "vendor_id", vendorID)
}

func (h *OrderHandler) ListBySupplier(c *fiber.Ctx) error {
	supplierID := c.Params("supplierId")
	if _, err := lookup(c.UserContext(), h.store.Suppliers, supplierID, "supplier"); err != nil {
		return err
	}
	return listBy(c, h.store.Orders, "supplier_id", supplierID)
}

type updateOrderRequest struct {
	Status       *string            `json:"status" validate:"omitempty,oneof=pending accepted rejected delivered cancelled"`
	DeliveryDate *time.Time         `json:"delivery_date"`
	DeliveryType *string            `json:"delivery_type" validate:"omitempty,oneof=weekly monthly"`
	Items        []orderItemRequest `json:"items"`
}

// UpdateOrder moves an order through its lifecycle. Accepting reserves stock
// and schedules a delivery when a date is known; cancelling an accepted order
// puts the stock back.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	var req updateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Items != nil {
		return badRequest("items cannot be changed after an order is placed")
	}
	ctx := c.UserContext()
	id := c.Params("id")

	var (
		order   *models.Order
		changed bool
	)
	err := h.store.Atomic(func() error {
		current, err := lookup(ctx, h.store.Orders, id, "order")
		if err != nil {
			return err
		}

		next := current.Status
		if req.Status != nil {
			next = *req.Status
		}
		if !models.CanTransitionOrder(current.Status, next) {
			return badRequest(fmt.Sprintf("cannot change order status from %s to %s", current.Status, next))
		}
		changed = next != current.Status

		if changed {
			switch {
			case next == models.OrderAccepted:
				if err := services.ReserveStock(ctx, h.store, current.Items); err != nil {
					return orderError(err)
				}
			case current.Status == models.OrderAccepted && next == models.OrderCancelled:
				if err := services.ReleaseStock(ctx, h.store, current.Items); err != nil {
					return err
				}
			}
		}

		order, err = h.store.Orders.Update(ctx, id, func(o *models.Order) error {
			o.Status = next
			if req.DeliveryDate != nil {
				o.DeliveryDate = req.DeliveryDate
			}
			if req.DeliveryType != nil {
				o.DeliveryType = *req.DeliveryType
			}
			return nil
		})
		if err != nil {
			return err
		}

		if changed && next == models.OrderAccepted && order.DeliveryDate != nil {
			_, err = h.store.Deliveries.Create(ctx, &models.Delivery{
				OrderID:       order.ID,
				ScheduledDate: *order.DeliveryDate,
				Status:        models.DeliveryScheduled,
			})
		}
		return err
	})
	if err != nil {
		return err
	}

	if changed {
		h.metrics.OrderTransition(order.Status)
		h.notifier.OrderStatusChanged(ctx, order)
	}
	return respond(c, order)
}

// ExportSupplierOrders streams the supplier's orders as an Excel workbook.
// Only the user owning the supplier profile may export it.
func (h *OrderHandler) ExportSupplierOrders(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := middleware.GetCurrentUserID(c)

	supplier, err := lookup(ctx, h.store.Suppliers, c.Params("supplierId"), "supplier")
	if err != nil {
		return err
	}
	if supplier.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "you can only export your own orders")
	}

	orders, err := h.store.Orders.Find(ctx, "supplier_id", supplier.ID)
	if err != nil {
		return err
	}
	products, err := h.store.Products.Find(ctx, "supplier_id", supplier.ID)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	data, err := services.ExportOrdersXLSX(orders, names)
	if err != nil {
		return fmt.Errorf("export orders: %w", err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="orders_%s.xlsx"`, supplier.ID))
	return c.Send(data)
}
