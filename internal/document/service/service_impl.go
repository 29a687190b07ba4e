package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smartlogix/cargopro/internal/authcontext"
	"github.com/smartlogix/cargopro/internal/document/domain"
	"github.com/smartlogix/cargopro/internal/observability/metrics"
	"github.com/smartlogix/cargopro/internal/scope"
	"github.com/smartlogix/cargopro/internal/storage"
	"github.com/smartlogix/cargopro/pkg/db"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mediaSubdir = "documents"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Store   storage.Store
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	store   storage.Store
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("document.service"),
		repo:    p.Repo,
		store:   p.Store,
		metrics: p.Metrics,
	}
}

func (s *Service) scoped(ctx context.Context) *gorm.DB {
	id, ok := authcontext.IdentityFromContext(ctx)
	if !ok {
		return s.db
	}
	return s.db.Scopes(scope.Visible(id, scope.ResourceDocument))
}

// Create stores the file first, then the record. If the record write
// fails the stored file is cleaned up, so no orphan rows reference
// missing files.
func (s *Service) Create(ctx context.Context, req domain.CreateDocumentRequest) (domain.Document, error) {
	documentNo := strings.TrimSpace(req.DocumentNo)
	if documentNo == "" {
		return domain.Document{}, domain.ErrInvalidDocumentNo
	}

	shipmentNo := strings.TrimSpace(req.ShipmentNo)
	if shipmentNo == "" {
		return domain.Document{}, domain.ErrInvalidShipment
	}
	if err := s.shipmentExists(ctx, shipmentNo); err != nil {
		return domain.Document{}, err
	}

	var customerID *snowflake.ID
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Document{}, domain.ErrInvalidCustomer
		}
		customerID = &id
	}

	var parcelNo *string
	if raw := strings.TrimSpace(req.ParcelNo); raw != "" {
		parcelNo = &raw
	}

	docType := domain.DocumentType(strings.TrimSpace(req.DocumentType))
	if !docType.Valid() {
		return domain.Document{}, domain.ErrInvalidType
	}

	if req.File == nil {
		return domain.Document{}, domain.ErrMissingFile
	}
	filePath, err := s.store.Save(mediaSubdir, req.FileName, req.File)
	if err != nil {
		return domain.Document{}, err
	}

	now := time.Now().UTC()
	document := domain.Document{
		DocumentNo:   documentNo,
		ShipmentNo:   shipmentNo,
		CustomerID:   customerID,
		ParcelNo:     parcelNo,
		DocumentType: docType,
		FilePath:     filePath,
		IssuedDate:   now,
		Description:  strings.TrimSpace(req.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &document); err != nil {
		_ = s.store.Remove(filePath)
		if db.IsDuplicateKeyErr(err) {
			return domain.Document{}, domain.ErrDocumentExists
		}
		return domain.Document{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordDocumentUpload(ctx, string(docType))
	}
	return document, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDocumentRequest) (domain.ListDocumentResponse, error) {
	filter := domain.ListDocumentFilter{
		ShipmentNo:   strings.TrimSpace(req.ShipmentNo),
		CustomerID:   strings.TrimSpace(req.CustomerID),
		DocumentType: strings.TrimSpace(req.DocumentType),
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.scoped(ctx), filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListDocumentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(document *domain.Document) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        document.DocumentNo,
			CreatedAt: document.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	documents := make([]domain.Document, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		documents = append(documents, *item)
	}

	resp := domain.ListDocumentResponse{Documents: documents}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, documentNo string) (domain.Document, error) {
	documentNo = strings.TrimSpace(documentNo)
	if documentNo == "" {
		return domain.Document{}, domain.ErrInvalidDocumentNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), documentNo)
	if err != nil {
		return domain.Document{}, err
	}
	if item == nil {
		return domain.Document{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateDocumentRequest) (domain.Document, error) {
	documentNo := strings.TrimSpace(req.DocumentNo)
	if documentNo == "" {
		return domain.Document{}, domain.ErrInvalidDocumentNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), documentNo)
	if err != nil {
		return domain.Document{}, err
	}
	if item == nil {
		return domain.Document{}, domain.ErrNotFound
	}

	if req.CustomerID != nil {
		if raw := strings.TrimSpace(*req.CustomerID); raw == "" {
			item.CustomerID = nil
		} else {
			id, err := snowflake.ParseString(raw)
			if err != nil || id == 0 {
				return domain.Document{}, domain.ErrInvalidCustomer
			}
			item.CustomerID = &id
		}
	}
	if req.ParcelNo != nil {
		if raw := strings.TrimSpace(*req.ParcelNo); raw == "" {
			item.ParcelNo = nil
		} else {
			item.ParcelNo = &raw
		}
	}
	if req.DocumentType != nil {
		docType := domain.DocumentType(strings.TrimSpace(*req.DocumentType))
		if !docType.Valid() {
			return domain.Document{}, domain.ErrInvalidType
		}
		item.DocumentType = docType
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}

	oldPath := ""
	if req.File != nil {
		filePath, err := s.store.Save(mediaSubdir, req.FileName, req.File)
		if err != nil {
			return domain.Document{}, err
		}
		oldPath = item.FilePath
		item.FilePath = filePath
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if item.FilePath != oldPath && oldPath != "" {
			_ = s.store.Remove(item.FilePath)
		}
		return domain.Document{}, err
	}
	if oldPath != "" {
		_ = s.store.Remove(oldPath)
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, documentNo string) error {
	documentNo = strings.TrimSpace(documentNo)
	if documentNo == "" {
		return domain.ErrInvalidDocumentNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), documentNo)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, documentNo); err != nil {
		return err
	}
	_ = s.store.Remove(item.FilePath)
	return nil
}

func (s *Service) shipmentExists(ctx context.Context, shipmentNo string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Table("shipments").
		Where("shipment_no = ?", shipmentNo).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}
