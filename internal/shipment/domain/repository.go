package domain

import (
	"context"

	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, shipment *Shipment) error
	Find(ctx context.Context, db *gorm.DB, shipmentNo string) (*Shipment, error)
	List(ctx context.Context, db *gorm.DB, filter ListShipmentFilter, page pagination.Pagination) ([]*Shipment, error)
	Update(ctx context.Context, db *gorm.DB, shipment *Shipment) error
	Delete(ctx context.Context, db *gorm.DB, shipmentNo string) error
	Customers(ctx context.Context, db *gorm.DB, shipmentNo string) ([]customerdomain.Customer, error)
}
