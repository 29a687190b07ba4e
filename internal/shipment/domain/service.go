package domain

import (
	"context"
	"errors"

	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
)

type CreateShipmentRequest struct {
	ShipmentNo  string  `json:"shipment_no"`
	Transport   string  `json:"transport"`
	Vessel      string  `json:"vessel"`
	Weight      float64 `json:"weight"`
	WeightUnit  string  `json:"weight_unit"`
	Volume      float64 `json:"volume"`
	VolumeUnit  string  `json:"volume_unit"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Status      string  `json:"status"`
}

// UpdateShipmentRequest carries a partial update; nil fields are left
// untouched.
type UpdateShipmentRequest struct {
	ShipmentNo  string   `json:"-"`
	Transport   *string  `json:"transport"`
	Vessel      *string  `json:"vessel"`
	Weight      *float64 `json:"weight"`
	WeightUnit  *string  `json:"weight_unit"`
	Volume      *float64 `json:"volume"`
	VolumeUnit  *string  `json:"volume_unit"`
	Origin      *string  `json:"origin"`
	Destination *string  `json:"destination"`
	Steps       *uint64  `json:"steps"`
	Status      *string  `json:"status"`
}

type ListShipmentRequest struct {
	PageToken   string `form:"page_token"`
	PageSize    int32  `form:"page_size"`
	Status      string `form:"status"`
	Transport   string `form:"transport"`
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
}

type ListShipmentFilter struct {
	Status      string
	Transport   string
	Origin      string
	Destination string
}

type ListShipmentResponse struct {
	pagination.PageInfo
	Shipments []Shipment `json:"shipments"`
}

type Service interface {
	Create(context.Context, CreateShipmentRequest) (Shipment, error)
	List(context.Context, ListShipmentRequest) (ListShipmentResponse, error)
	Get(ctx context.Context, shipmentNo string) (Shipment, error)
	Update(context.Context, UpdateShipmentRequest) (Shipment, error)
	Delete(ctx context.Context, shipmentNo string) error
	// Customers lists the distinct customers owning parcels on the
	// shipment.
	Customers(ctx context.Context, shipmentNo string) ([]customerdomain.Customer, error)
}

var (
	ErrInvalidShipmentNo = errors.New("invalid_shipment_no")
	ErrInvalidTransport  = errors.New("invalid_transport")
	ErrInvalidVessel     = errors.New("invalid_vessel")
	ErrInvalidWeight     = errors.New("invalid_weight")
	ErrInvalidVolume     = errors.New("invalid_volume")
	ErrInvalidRoute      = errors.New("invalid_route")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrShipmentExists    = errors.New("shipment_exists")
	ErrNotFound          = errors.New("not_found")
)
