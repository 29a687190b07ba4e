package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Find(ctx context.Context, db *gorm.DB, invoiceNo string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, invoiceNo string) error

	ListItems(ctx context.Context, db *gorm.DB, invoiceNo string) ([]InvoiceItem, error)
	FindItem(ctx context.Context, db *gorm.DB, invoiceNo string, itemID snowflake.ID) (*InvoiceItem, error)
	InsertItem(ctx context.Context, db *gorm.DB, item *InvoiceItem) error
	UpdateItem(ctx context.Context, db *gorm.DB, item *InvoiceItem) error
	DeleteItem(ctx context.Context, db *gorm.DB, invoiceNo string, itemID snowflake.ID) error
}
