package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
)

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "Paid"
	PaymentUnpaid PaymentStatus = "Unpaid"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPaid || p == PaymentUnpaid
}

type CommodityType string

const (
	CommodityBox      CommodityType = "Box"
	CommodityParcel   CommodityType = "Parcel"
	CommodityEnvelope CommodityType = "Envelope"
)

func (c CommodityType) Valid() bool {
	switch c {
	case CommodityBox, CommodityParcel, CommodityEnvelope:
		return true
	default:
		return false
	}
}

// Parcel belongs to exactly one shipment and at most one customer.
// Status is not stored: it mirrors the owning shipment's status and is
// joined in on every read.
type Parcel struct {
	ParcelNo      string                        `gorm:"primaryKey;column:parcel_no" json:"parcel_no"`
	ShipmentNo    string                        `gorm:"column:shipment_no;not null;index" json:"shipment_no"`
	CustomerID    *snowflake.ID                 `gorm:"index" json:"customer_id,omitempty"`
	Weight        float64                       `gorm:"not null" json:"weight"`
	WeightUnit    string                        `gorm:"not null;default:kg" json:"weight_unit"`
	Volume        float64                       `gorm:"not null" json:"volume"`
	VolumeUnit    string                        `gorm:"not null;default:m3" json:"volume_unit"`
	Charge        decimal.Decimal               `gorm:"type:numeric(14,2);not null" json:"charge"`
	Currency      string                        `gorm:"not null;default:TZS" json:"currency"`
	Payment       PaymentStatus                 `gorm:"not null;default:Unpaid" json:"payment"`
	CommodityType CommodityType                 `gorm:"not null;default:Parcel" json:"commodity_type"`
	Description   string                        `gorm:"type:text" json:"description,omitempty"`
	Status        shipmentdomain.ShipmentStatus `gorm:"->;-:migration" json:"status"`
	CreatedAt     time.Time                     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time                     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Parcel) TableName() string { return "parcels" }
