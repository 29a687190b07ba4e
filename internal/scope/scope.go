// Package scope narrows queries to the rows an identity may see.
// Admin and staff see everything. Customers see only rows reachable
// from a customer record whose email matches their account email; the
// reachability path is declared per resource, never probed at runtime.
package scope

import (
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	"gorm.io/gorm"
)

// Resource names a scoped table.
type Resource string

const (
	ResourceCustomer    Resource = "customer"
	ResourceShipment    Resource = "shipment"
	ResourceParcel      Resource = "parcel"
	ResourceDocument    Resource = "document"
	ResourceInvoice     Resource = "invoice"
	ResourceInvoiceItem Resource = "invoice_item"
)

// ownershipPaths maps each resource to the predicate tying its rows to
// the requesting customer's email. Rows outside the predicate are
// invisible, so out-of-scope fetches read as not found rather than
// forbidden.
var ownershipPaths = map[Resource]func(email string) func(*gorm.DB) *gorm.DB{
	ResourceCustomer: func(email string) func(*gorm.DB) *gorm.DB {
		return func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where("customers.email = ?", email)
		}
	},
	ResourceShipment: func(email string) func(*gorm.DB) *gorm.DB {
		return func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where(
				`EXISTS (
					SELECT 1 FROM parcels
					JOIN customers ON customers.id = parcels.customer_id
					WHERE parcels.shipment_no = shipments.shipment_no
					  AND customers.email = ?
				)`, email)
		}
	},
	ResourceParcel: func(email string) func(*gorm.DB) *gorm.DB {
		return func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where(
				`EXISTS (
					SELECT 1 FROM customers
					WHERE customers.id = parcels.customer_id
					  AND customers.email = ?
				)`, email)
		}
	},
	ResourceDocument: func(email string) func(*gorm.DB) *gorm.DB {
		return func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where(
				`EXISTS (
					SELECT 1 FROM customers
					WHERE customers.id = documents.customer_id
					  AND customers.email = ?
				)`, email)
		}
	},
	ResourceInvoice: func(email string) func(*gorm.DB) *gorm.DB {
		return func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where(
				`EXISTS (
					SELECT 1 FROM customers
					WHERE customers.id = invoices.customer_id
					  AND customers.email = ?
				)`, email)
		}
	},
	ResourceInvoiceItem: func(email string) func(*gorm.DB) *gorm.DB {
		return func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where(
				`EXISTS (
					SELECT 1 FROM invoices
					JOIN customers ON customers.id = invoices.customer_id
					WHERE invoices.invoice_no = invoice_items.invoice_no
					  AND customers.email = ?
				)`, email)
		}
	},
}

// Visible returns a gorm scope restricting the statement to rows the
// identity may see. Identity email is always the account's current
// email, reloaded per request.
func Visible(id identitydomain.Identity, resource Resource) func(*gorm.DB) *gorm.DB {
	if id.Role == identitydomain.RoleAdmin || id.Role == identitydomain.RoleStaff {
		return func(stmt *gorm.DB) *gorm.DB { return stmt }
	}
	path, ok := ownershipPaths[resource]
	if !ok {
		// Closed world: unknown resources are invisible to customers.
		return func(stmt *gorm.DB) *gorm.DB {
			return stmt.Where("1 = 0")
		}
	}
	return path(id.User.Email)
}
