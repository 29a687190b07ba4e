package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DocumentType string

const (
	TypeInvoice          DocumentType = "Invoice"
	TypeBillOfLading     DocumentType = "Bill_of_lading"
	TypeCustomsClearance DocumentType = "Customs_clearance"
	TypePackingList      DocumentType = "Packing_list"
	TypeOther            DocumentType = "Other"
)

func (d DocumentType) Valid() bool {
	switch d {
	case TypeInvoice, TypeBillOfLading, TypeCustomsClearance, TypePackingList, TypeOther:
		return true
	default:
		return false
	}
}

// Document attaches an uploaded file to a shipment, optionally scoped
// to a customer and/or a parcel. FilePath is relative to the media
// root.
type Document struct {
	DocumentNo   string        `gorm:"primaryKey;column:document_no" json:"document_no"`
	ShipmentNo   string        `gorm:"column:shipment_no;not null;index" json:"shipment_no"`
	CustomerID   *snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	ParcelNo     *string       `gorm:"column:parcel_no" json:"parcel_no,omitempty"`
	DocumentType DocumentType  `gorm:"not null" json:"document_type"`
	FilePath     string        `gorm:"not null" json:"file_path"`
	IssuedDate   time.Time     `gorm:"not null" json:"issued_date"`
	Description  string        `gorm:"type:text" json:"description,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
