package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/supplysetu/internal/models"
)

// gormCollection persists records in one table through GORM.
type gormCollection[T any, P recordPtr[T]] struct {
	db     *gorm.DB
	fields Fields[T]
	hook   UpdateHook[T]
	now    Clock
}

func newGormCollection[T any, P recordPtr[T]](db *gorm.DB, now Clock, fields Fields[T], hook UpdateHook[T]) *gormCollection[T, P] {
	return &gormCollection[T, P]{db: db, fields: fields, hook: hook, now: now}
}

func (g *gormCollection[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	now := g.now()
	next := *rec
	P(&next).Stamp(models.NewID(), now)
	if g.hook != nil {
		var zero T
		g.hook(&zero, &next, now)
	}

	if err := g.db.WithContext(ctx).Create(&next).Error; err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return &next, nil
}

func (g *gormCollection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := g.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (g *gormCollection[T, P]) Update(ctx context.Context, id string, mutate func(*T) error) (*T, error) {
	var out T
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev T
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&prev, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		next := prev
		if err := mutate(&next); err != nil {
			return err
		}

		now := g.now()
		base := P(&prev)
		P(&next).Stamp(base.GetID(), base.Created())
		P(&next).Touch(now)
		if g.hook != nil {
			g.hook(&prev, &next, now)
		}

		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *gormCollection[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	res := g.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (g *gormCollection[T, P]) Find(ctx context.Context, field string, value any) ([]T, error) {
	if _, ok := g.fields[field]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	out := make([]T, 0)
	err := g.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *gormCollection[T, P]) FindOne(ctx context.Context, field string, value any) (*T, error) {
	found, err := g.Find(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (g *gormCollection[T, P]) List(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	if err := g.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NewGorm builds a store whose collections are PostgreSQL tables.
func NewGorm(db *gorm.DB) *Store {
	now := Clock(time.Now)
	return &Store{
		Users:          newGormCollection[models.User](db, now, userFields, nil),
		StallTypes:     newGormCollection[models.StallType](db, now, stallTypeFields, nil),
		Vendors:        newGormCollection[models.Vendor](db, now, vendorFields, nil),
		Suppliers:      newGormCollection[models.Supplier](db, now, supplierFields, nil),
		Products:       newGormCollection[models.Product](db, now, productFields, nil),
		Bundles:        newGormCollection[models.Bundle](db, now, bundleFields, nil),
		Orders:         newGormCollection[models.Order](db, now, orderFields, nil),
		Deliveries:     newGormCollection[models.Delivery](db, now, deliveryFields, nil),
		DeliveryPauses: newGormCollection[models.DeliveryPause](db, now, pauseFields, nil),
		Complaints:     newGormCollection[models.Complaint](db, now, complaintFields, models.DeriveResolution),
		Subscriptions:  newGormCollection[models.Subscription](db, now, subscriptionFields, nil),
		Notifications:  newGormCollection[models.Notification](db, now, notificationFields, nil),
	}
}

// Tables lists every model for migrations.
func Tables() []interface{} {
	return []interface{}{
		&models.User{},
		&models.StallType{},
		&models.Vendor{},
		&models.Supplier{},
		&models.Product{},
		&models.Bundle{},
		&models.Order{},
		&models.Delivery{},
		&models.DeliveryPause{},
		&models.Complaint{},
		&models.Subscription{},
		&models.Notification{},
	}
}
