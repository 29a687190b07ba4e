package repository

import (
	"context"
	"errors"

	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	"github.com/smartlogix/cargopro/internal/shipment/domain"
	"github.com/smartlogix/cargopro/pkg/db/option"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, shipment *domain.Shipment) error {
	return db.WithContext(ctx).Create(shipment).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, shipmentNo string) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := db.WithContext(ctx).
		Where("shipments.shipment_no = ?", shipmentNo).
		First(&shipment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListShipmentFilter, page pagination.Pagination) ([]*domain.Shipment, error) {
	var shipments []*domain.Shipment
	stmt := db.WithContext(ctx).Model(&domain.Shipment{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Transport != "" {
		stmt = stmt.Where("transport = ?", filter.Transport)
	}
	if filter.Origin != "" {
		stmt = stmt.Where("origin = ?", filter.Origin)
	}
	if filter.Destination != "" {
		stmt = stmt.Where("destination = ?", filter.Destination)
	}
	stmt = option.ApplyKeyedPagination(page, "shipment_no").Apply(stmt)
	err := stmt.
		Order("created_at desc, shipment_no desc").
		Find(&shipments).Error
	if err != nil {
		return nil, err
	}
	return shipments, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, shipment *domain.Shipment) error {
	return db.WithContext(ctx).Save(shipment).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, shipmentNo string) error {
	return db.WithContext(ctx).
		Where("shipment_no = ?", shipmentNo).
		Delete(&domain.Shipment{}).Error
}

func (r *repo) Customers(ctx context.Context, db *gorm.DB, shipmentNo string) ([]customerdomain.Customer, error) {
	var customers []customerdomain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT customers.*
		 FROM customers
		 JOIN parcels ON parcels.customer_id = customers.id
		 WHERE parcels.shipment_no = ?
		 ORDER BY customers.name`,
		shipmentNo,
	).Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
