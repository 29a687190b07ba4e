package domain

import (
	"context"

	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, document *Document) error
	Find(ctx context.Context, db *gorm.DB, documentNo string) (*Document, error)
	List(ctx context.Context, db *gorm.DB, filter ListDocumentFilter, page pagination.Pagination) ([]*Document, error)
	Update(ctx context.Context, db *gorm.DB, document *Document) error
	Delete(ctx context.Context, db *gorm.DB, documentNo string) error
}
