package store

import "github.com/example/supplysetu/internal/models"

var userFields = Fields[models.User]{
	"phone_number": func(u *models.User) any { return u.PhoneNumber },
	"role":         func(u *models.User) any { return u.Role },
}

var stallTypeFields = Fields[models.StallType]{
	"slug": func(s *models.StallType) any { return s.Slug },
	"name": func(s *models.StallType) any { return s.Name },
}

var vendorFields = Fields[models.Vendor]{
	"user_id":       func(v *models.Vendor) any { return v.UserID },
	"stall_type_id": func(v *models.Vendor) any { return v.StallTypeID },
}

var supplierFields = Fields[models.Supplier]{
	"user_id": func(s *models.Supplier) any { return s.UserID },
}

var productFields = Fields[models.Product]{
	"supplier_id": func(p *models.Product) any { return p.SupplierID },
	"category":    func(p *models.Product) any { return p.Category },
}

var bundleFields = Fields[models.Bundle]{
	"stall_type_id": func(b *models.Bundle) any { return b.StallTypeID },
}

var orderFields = Fields[models.Order]{
	"vendor_id":   func(o *models.Order) any { return o.VendorID },
	"supplier_id": func(o *models.Order) any { return o.SupplierID },
	"status":      func(o *models.Order) any { return o.Status },
}

var deliveryFields = Fields[models.Delivery]{
	"order_id": func(d *models.Delivery) any { return d.OrderID },
	"status":   func(d *models.Delivery) any { return d.Status },
}

var pauseFields = Fields[models.DeliveryPause]{
	"vendor_id": func(p *models.DeliveryPause) any { return p.VendorID },
	"is_active": func(p *models.DeliveryPause) any { return p.IsActive },
}

var complaintFields = Fields[models.Complaint]{
	"vendor_id": func(c *models.Complaint) any { return c.VendorID },
	"status":    func(c *models.Complaint) any { return c.Status },
}

var subscriptionFields = Fields[models.Subscription]{
	"vendor_id":   func(s *models.Subscription) any { return s.VendorID },
	"supplier_id": func(s *models.Subscription) any { return s.SupplierID },
	"is_active":   func(s *models.Subscription) any { return s.IsActive },
}

var notificationFields = Fields[models.Notification]{
	"user_id": func(n *models.Notification) any { return n.UserID },
	"is_read": func(n *models.Notification) any { return n.IsRead },
}
