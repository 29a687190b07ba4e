package repository

import (
	"context"
	"errors"

	"github.com/smartlogix/cargopro/internal/document/domain"
	"github.com/smartlogix/cargopro/pkg/db/option"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, document *domain.Document) error {
	return db.WithContext(ctx).Create(document).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, documentNo string) (*domain.Document, error) {
	var document domain.Document
	err := db.WithContext(ctx).
		Where("documents.document_no = ?", documentNo).
		First(&document).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListDocumentFilter, page pagination.Pagination) ([]*domain.Document, error) {
	var documents []*domain.Document
	stmt := db.WithContext(ctx).Model(&domain.Document{})
	if filter.ShipmentNo != "" {
		stmt = stmt.Where("shipment_no = ?", filter.ShipmentNo)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("documents.customer_id = ?", filter.CustomerID)
	}
	if filter.DocumentType != "" {
		stmt = stmt.Where("document_type = ?", filter.DocumentType)
	}
	stmt = option.ApplyKeyedPagination(page, "document_no").Apply(stmt)
	err := stmt.
		Order("created_at desc, document_no desc").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, document *domain.Document) error {
	return db.WithContext(ctx).Save(document).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, documentNo string) error {
	return db.WithContext(ctx).
		Where("document_no = ?", documentNo).
		Delete(&domain.Document{}).Error
}
