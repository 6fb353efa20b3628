package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/store"
)

// Order fulfilment errors.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrForeignProduct    = errors.New("product is not sold by this supplier")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrQuantityRange     = errors.New("quantity out of range")
)

// MaxItemQuantity bounds the quantity of a single order line.
const MaxItemQuantity = 100000

var maxQuantity = decimal.NewFromInt(MaxItemQuantity)

// ItemRequest is an order line as requested by a vendor or a subscription.
type ItemRequest struct {
	ProductID string
	Quantity  decimal.Decimal
	Unit      string
	Price     *models.Money
}

// PriceOrderItems resolves every product of items against supplierID and
// fills missing prices and units from the product listing.
func PriceOrderItems(ctx context.Context, s *store.Store, supplierID string, items []ItemRequest) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if _, ok := stockUnits(item.Quantity); !ok {
			return nil, fmt.Errorf("%w: %s", ErrQuantityRange, item.Quantity)
		}
		product, err := s.Products.Get(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if product.SupplierID != supplierID {
			return nil, fmt.Errorf("%w: %s", ErrForeignProduct, item.ProductID)
		}

		line := models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Price:     product.Price,
		}
		if item.Price != nil {
			line.Price = *item.Price
		}
		if line.Unit == "" {
			line.Unit = product.Unit
		}
		out = append(out, line)
	}
	return out, nil
}

// stockUnits is the whole number of stock units a quantity consumes. It
// reports false for quantities outside (0, MaxItemQuantity].
func stockUnits(qty decimal.Decimal) (int, bool) {
	if !qty.IsPositive() || qty.GreaterThan(maxQuantity) {
		return 0, false
	}
	return int(qty.Ceil().IntPart()), true
}

// ReserveStock decrements the stock of every product in items. Either all
// products have enough stock and all are decremented, or nothing changes.
// Callers run it inside Store.Atomic.
func ReserveStock(ctx context.Context, s *store.Store, items []models.OrderItem) error {
	need := map[string]int{}
	var order []string
	for _, item := range items {
		if _, seen := need[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		units, ok := stockUnits(item.Quantity)
		if !ok {
			return fmt.Errorf("%w: quantity %s of %s is out of range", ErrInsufficientStock, item.Quantity, item.ProductID)
		}
		need[item.ProductID] += units
	}

	for _, id := range order {
		product, err := s.Products.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if err != nil {
			return err
		}
		if product.StockLevel < need[id] {
			return fmt.Errorf("%w: %s has %d, order needs %d", ErrInsufficientStock, product.Name, product.StockLevel, need[id])
		}
	}

	for _, id := range order {
		units := need[id]
		if _, err := s.Products.Update(ctx, id, func(p *models.Product) error {
			p.StockLevel -= units
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseStock returns the stock reserved for items. Products deleted since
// the reservation are skipped.
func ReleaseStock(ctx context.Context, s *store.Store, items []models.OrderItem) error {
	for _, item := range items {
		units, ok := stockUnits(item.Quantity)
		if !ok {
			continue
		}
		_, err := s.Products.Update(ctx, item.ProductID, func(p *models.Product) error {
			p.StockLevel += units
			return nil
		})
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}
