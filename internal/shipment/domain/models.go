package domain

import "time"

type ShipmentStatus string

const (
	StatusInTransit  ShipmentStatus = "In-transit"
	StatusDelivered  ShipmentStatus = "Delivered"
	StatusNotBoarded ShipmentStatus = "Not-boarded"
)

func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusInTransit, StatusDelivered, StatusNotBoarded:
		return true
	default:
		return false
	}
}

type TransportMode string

const (
	TransportAir  TransportMode = "Air"
	TransportSea  TransportMode = "Sea"
	TransportRoad TransportMode = "Road"
	TransportRail TransportMode = "Rail"
)

func (t TransportMode) Valid() bool {
	switch t {
	case TransportAir, TransportSea, TransportRoad, TransportRail:
		return true
	default:
		return false
	}
}

// Measurement units accepted on shipments and parcels.
const (
	WeightKg   = "kg"
	WeightLbs  = "lbs"
	WeightTons = "tons"

	VolumeCubicMeters = "m3"
	VolumeCubicFeet   = "ft3"
)

func ValidWeightUnit(u string) bool {
	return u == WeightKg || u == WeightLbs || u == WeightTons
}

func ValidVolumeUnit(u string) bool {
	return u == VolumeCubicMeters || u == VolumeCubicFeet
}

// Shipment is keyed by its human-assigned shipment number. Parcels
// reference it by that number.
type Shipment struct {
	ShipmentNo  string         `gorm:"primaryKey;column:shipment_no" json:"shipment_no"`
	Transport   TransportMode  `gorm:"not null" json:"transport"`
	Vessel      string         `gorm:"not null" json:"vessel"`
	Weight      float64        `gorm:"not null" json:"weight"`
	WeightUnit  string         `gorm:"not null;default:kg" json:"weight_unit"`
	Volume      float64        `gorm:"not null" json:"volume"`
	VolumeUnit  string         `gorm:"not null;default:m3" json:"volume_unit"`
	Origin      string         `gorm:"not null" json:"origin"`
	Destination string         `gorm:"not null" json:"destination"`
	Steps       uint64         `gorm:"not null;default:0" json:"steps"`
	Status      ShipmentStatus `gorm:"not null;default:Not-boarded" json:"status"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Shipment) TableName() string { return "shipments" }
