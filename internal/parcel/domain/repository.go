package domain

import (
	"context"

	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, parcel *Parcel) error
	Find(ctx context.Context, db *gorm.DB, parcelNo string) (*Parcel, error)
	List(ctx context.Context, db *gorm.DB, filter ListParcelFilter, page pagination.Pagination) ([]*Parcel, error)
	Update(ctx context.Context, db *gorm.DB, parcel *Parcel) error
	Delete(ctx context.Context, db *gorm.DB, parcelNo string) error
}
