package domain

import (
	"context"
	"errors"

	"github.com/smartlogix/cargopro/pkg/db/pagination"
)

type CreateParcelRequest struct {
	ParcelNo      string  `json:"parcel_no"`
	ShipmentNo    string  `json:"shipment_no"`
	CustomerID    string  `json:"customer_id"`
	Weight        float64 `json:"weight"`
	WeightUnit    string  `json:"weight_unit"`
	Volume        float64 `json:"volume"`
	VolumeUnit    string  `json:"volume_unit"`
	Charge        string  `json:"charge"`
	Currency      string  `json:"currency"`
	Payment       string  `json:"payment"`
	CommodityType string  `json:"commodity_type"`
	Description   string  `json:"description"`
}

// UpdateParcelRequest carries a partial update; nil fields are left
// untouched.
type UpdateParcelRequest struct {
	ParcelNo      string   `json:"-"`
	ShipmentNo    *string  `json:"shipment_no"`
	CustomerID    *string  `json:"customer_id"`
	Weight        *float64 `json:"weight"`
	WeightUnit    *string  `json:"weight_unit"`
	Volume        *float64 `json:"volume"`
	VolumeUnit    *string  `json:"volume_unit"`
	Charge        *string  `json:"charge"`
	Payment       *string  `json:"payment"`
	CommodityType *string  `json:"commodity_type"`
	Description   *string  `json:"description"`
}

type ListParcelRequest struct {
	PageToken  string `form:"page_token"`
	PageSize   int32  `form:"page_size"`
	ShipmentNo string `form:"shipment_no"`
	CustomerID string `form:"customer_id"`
	Payment    string `form:"payment"`
	Commodity  string `form:"commodity_type"`
}

type ListParcelFilter struct {
	ShipmentNo string
	CustomerID string
	Payment    string
	Commodity  string
}

type ListParcelResponse struct {
	pagination.PageInfo
	Parcels []Parcel `json:"parcels"`
}

type Service interface {
	Create(context.Context, CreateParcelRequest) (Parcel, error)
	List(context.Context, ListParcelRequest) (ListParcelResponse, error)
	Get(ctx context.Context, parcelNo string) (Parcel, error)
	Update(context.Context, UpdateParcelRequest) (Parcel, error)
	Delete(ctx context.Context, parcelNo string) error
}

var (
	ErrInvalidParcelNo  = errors.New("invalid_parcel_no")
	ErrInvalidShipment  = errors.New("invalid_shipment")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidWeight    = errors.New("invalid_weight")
	ErrInvalidVolume    = errors.New("invalid_volume")
	ErrInvalidCharge    = errors.New("invalid_charge")
	ErrInvalidPayment   = errors.New("invalid_payment")
	ErrInvalidCommodity = errors.New("invalid_commodity_type")
	ErrParcelExists     = errors.New("parcel_exists")
	ErrShipmentNotFound = errors.New("shipment_not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrNotFound         = errors.New("not_found")
)
