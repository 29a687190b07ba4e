package repository

import (
	"context"
	"errors"

	"github.com/smartlogix/cargopro/internal/parcel/domain"
	"github.com/smartlogix/cargopro/pkg/db/option"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// withStatus joins the owning shipment so the parcel's status mirrors
// the shipment's on every read.
func withStatus(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.Parcel{}).
		Select("parcels.*, shipments.status AS status").
		Joins("LEFT JOIN shipments ON shipments.shipment_no = parcels.shipment_no")
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, parcel *domain.Parcel) error {
	return db.WithContext(ctx).Create(parcel).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, parcelNo string) (*domain.Parcel, error) {
	var parcel domain.Parcel
	err := withStatus(db.WithContext(ctx)).
		Where("parcels.parcel_no = ?", parcelNo).
		First(&parcel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &parcel, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListParcelFilter, page pagination.Pagination) ([]*domain.Parcel, error) {
	var parcels []*domain.Parcel
	stmt := withStatus(db.WithContext(ctx))
	if filter.ShipmentNo != "" {
		stmt = stmt.Where("parcels.shipment_no = ?", filter.ShipmentNo)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("parcels.customer_id = ?", filter.CustomerID)
	}
	if filter.Payment != "" {
		stmt = stmt.Where("parcels.payment = ?", filter.Payment)
	}
	if filter.Commodity != "" {
		stmt = stmt.Where("parcels.commodity_type = ?", filter.Commodity)
	}
	stmt = option.ApplyKeyedPagination(page, "parcels.parcel_no").Apply(stmt)
	err := stmt.
		Order("parcels.created_at desc, parcels.parcel_no desc").
		Find(&parcels).Error
	if err != nil {
		return nil, err
	}
	return parcels, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, parcel *domain.Parcel) error {
	return db.WithContext(ctx).Save(parcel).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, parcelNo string) error {
	return db.WithContext(ctx).
		Where("parcel_no = ?", parcelNo).
		Delete(&domain.Parcel{}).Error
}
