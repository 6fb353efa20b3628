package models

import "slices"

// Clone methods return copies that share no slices or pointers with the
// receiver. Decimal values are immutable and are shared as is.

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (o *Order) Clone() Order {
	out := *o
	out.Items = slices.Clone(o.Items)
	out.DeliveryDate = clonePtr(o.DeliveryDate)
	return out
}

func (b *Bundle) Clone() Bundle {
	out := *b
	out.Items = slices.Clone(b.Items)
	return out
}

func (s *Subscription) Clone() Subscription {
	out := *s
	out.BundleID = clonePtr(s.BundleID)
	out.CustomItems = slices.Clone(s.CustomItems)
	out.NextDelivery = clonePtr(s.NextDelivery)
	return out
}

func (s *Supplier) Clone() Supplier {
	out := *s
	out.DeliveryZones = slices.Clone(s.DeliveryZones)
	return out
}

func (c *Complaint) Clone() Complaint {
	out := *c
	out.OrderID = clonePtr(c.OrderID)
	out.ResolvedAt = clonePtr(c.ResolvedAt)
	return out
}

func (d *Delivery) Clone() Delivery {
	out := *d
	out.ActualDate = clonePtr(d.ActualDate)
	return out
}
