package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DefaultCurrency tags monetary amounts when the caller does not
// supply one.
const DefaultCurrency = "TZS"

type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "Pending"
	StatusPaid    InvoiceStatus = "Paid"
	StatusOverdue InvoiceStatus = "Overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	default:
		return false
	}
}

// Invoice carries derived totals. TotalAmount and FinalAmount are
// recomputed from the items and never accepted from callers.
type Invoice struct {
	InvoiceNo   string          `gorm:"primaryKey;column:invoice_no" json:"invoice_no"`
	CustomerID  snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	IssueDate   time.Time       `gorm:"not null" json:"issue_date"`
	DueDate     time.Time       `gorm:"not null" json:"due_date"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Tax         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax"`
	FinalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"final_amount"`
	Currency    string          `gorm:"not null;default:TZS" json:"currency"`
	Status      InvoiceStatus   `gorm:"not null;default:Pending" json:"status"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem bills one parcel on one invoice. The (invoice, parcel)
// pair is unique; re-billing an already billed parcel is a conflict.
type InvoiceItem struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceNo string          `gorm:"column:invoice_no;not null;uniqueIndex:ux_invoice_items_invoice_parcel" json:"invoice_no"`
	ParcelNo  string          `gorm:"column:parcel_no;not null;uniqueIndex:ux_invoice_items_invoice_parcel" json:"parcel_no"`
	Cost      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"cost"`
	Currency  string          `gorm:"not null;default:TZS" json:"currency"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
