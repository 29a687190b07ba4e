package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smartlogix/cargopro/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	InvoiceNo  string     `json:"invoice_no"`
	CustomerID string     `json:"customer_id"`
	DueDate    *time.Time `json:"due_date"`
	Tax        string     `json:"tax"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
}

// UpdateInvoiceRequest carries a partial update. Derived totals are
// never accepted; they are recomputed after every save.
type UpdateInvoiceRequest struct {
	InvoiceNo string     `json:"-"`
	DueDate   *time.Time `json:"due_date"`
	Tax       *string    `json:"tax"`
	Status    *string    `json:"status"`
}

type ListInvoiceRequest struct {
	PageToken  string `form:"page_token"`
	PageSize   int32  `form:"page_size"`
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
}

type ListInvoiceFilter struct {
	CustomerID string
	Status     string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type CreateItemRequest struct {
	InvoiceNo string `json:"-"`
	ParcelNo  string `json:"parcel_no"`
	// Cost is optional; empty defaults to the parcel's charge.
	Cost string `json:"cost"`
}

type UpdateItemRequest struct {
	InvoiceNo string `json:"-"`
	ItemID    string `json:"-"`
	Cost      string `json:"cost"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	Get(ctx context.Context, invoiceNo string) (Invoice, error)
	Update(context.Context, UpdateInvoiceRequest) (Invoice, error)
	Delete(ctx context.Context, invoiceNo string) error

	ListItems(ctx context.Context, invoiceNo string) ([]InvoiceItem, error)
	CreateItem(context.Context, CreateItemRequest) (InvoiceItem, error)
	UpdateItem(context.Context, UpdateItemRequest) (InvoiceItem, error)
	DeleteItem(ctx context.Context, invoiceNo, itemID string) error
}

var (
	ErrInvalidInvoiceNo = errors.New("invalid_invoice_no")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidDueDate   = errors.New("invalid_due_date")
	ErrInvalidTax       = errors.New("invalid_tax")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidCost      = errors.New("invalid_cost")
	ErrInvalidItemID    = errors.New("invalid_item_id")
	ErrInvoiceExists    = errors.New("invoice_exists")
	ErrItemExists       = errors.New("invoice_item_exists")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrParcelNotFound   = errors.New("parcel_not_found")
	ErrItemNotFound     = errors.New("invoice_item_not_found")
	ErrNotFound         = errors.New("not_found")
)
