package domain

import (
	"context"
	"errors"
	"io"

	"github.com/smartlogix/cargopro/pkg/db/pagination"
)

type CreateDocumentRequest struct {
	DocumentNo   string
	ShipmentNo   string
	CustomerID   string
	ParcelNo     string
	DocumentType string
	Description  string
	// FileName and File carry the multipart upload.
	FileName string
	File     io.Reader
}

// UpdateDocumentRequest carries a partial update. A new file replaces
// the stored one; the old file is removed after commit.
type UpdateDocumentRequest struct {
	DocumentNo   string
	CustomerID   *string
	ParcelNo     *string
	DocumentType *string
	Description  *string
	FileName     string
	File         io.Reader
}

type ListDocumentRequest struct {
	PageToken    string `form:"page_token"`
	PageSize     int32  `form:"page_size"`
	ShipmentNo   string `form:"shipment_no"`
	CustomerID   string `form:"customer_id"`
	DocumentType string `form:"document_type"`
}

type ListDocumentFilter struct {
	ShipmentNo   string
	CustomerID   string
	DocumentType string
}

type ListDocumentResponse struct {
	pagination.PageInfo
	Documents []Document `json:"documents"`
}

type Service interface {
	Create(context.Context, CreateDocumentRequest) (Document, error)
	List(context.Context, ListDocumentRequest) (ListDocumentResponse, error)
	Get(ctx context.Context, documentNo string) (Document, error)
	Update(context.Context, UpdateDocumentRequest) (Document, error)
	Delete(ctx context.Context, documentNo string) error
}

var (
	ErrInvalidDocumentNo = errors.New("invalid_document_no")
	ErrInvalidShipment   = errors.New("invalid_shipment")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidParcel     = errors.New("invalid_parcel")
	ErrInvalidType       = errors.New("invalid_document_type")
	ErrMissingFile       = errors.New("missing_file")
	ErrDocumentExists    = errors.New("document_exists")
	ErrShipmentNotFound  = errors.New("shipment_not_found")
	ErrNotFound          = errors.New("not_found")
)
