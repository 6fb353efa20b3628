package handlers

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/supplysetu/internal/middleware"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

const recentOrderCount = 5

// DashboardHandler aggregates order statistics for a supplier's dashboard.
type DashboardHandler struct {
	store *store.Store
	now   func() time.Time
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(s *store.Store) *DashboardHandler {
	return &DashboardHandler{store: s, now: time.Now}
}

// countsTowardRevenue excludes orders that never turned into a sale.
func countsTowardRevenue(status string) bool {
	return status != models.OrderCancelled && status != models.OrderRejected
}

// SupplierStats returns order counts by status, revenue totals, product and
// low-stock counts and the most recent orders of a supplier.
func (h *DashboardHandler) SupplierStats(c *fiber.Ctx) error {
	ctx := c.UserContext()
	supplier, err := lookup(ctx, h.store.Suppliers, c.Params("id"), "supplier")
	if err != nil {
		return err
	}
	if userID, _ := middleware.GetCurrentUserID(c); supplier.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "you can only view your own dashboard")
	}

	orders, err := h.store.Orders.Find(ctx, "supplier_id", supplier.ID)
	if err != nil {
		return err
	}
	products, err := h.store.Products.Find(ctx, "supplier_id", supplier.ID)
	if err != nil {
		return err
	}

	y, m, d := h.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)

	ordersByStatus := make(map[string]int)
	totalRevenue := models.MoneyFromDecimal(decimal.Zero)
	todayRevenue := models.MoneyFromDecimal(decimal.Zero)
	for _, o := range orders {
		ordersByStatus[o.Status]++
		if !countsTowardRevenue(o.Status) {
			continue
		}
		totalRevenue = totalRevenue.Add(o.TotalAmount)
		if !o.CreatedAt.Before(today) {
			todayRevenue = todayRevenue.Add(o.TotalAmount)
		}
	}

	lowStock := 0
	for _, p := range products {
		if p.StockLevel == 0 {
			lowStock++
		}
	}

	// Recent orders
	recent := make([]models.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentOrderCount {
		recent = recent[:recentOrderCount]
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":     len(orders),
			"total_products":   len(products),
			"out_of_stock":     lowStock,
			"total_revenue":    totalRevenue,
			"today_revenue":    todayRevenue,
			"orders_by_status": ordersByStatus,
			"recent_orders":    recent,
		},
	})
}
