// Package pdfexport assembles invoice statements and renders them
// through the PDF provider.
package pdfexport

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smartlogix/cargopro/internal/authcontext"
	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	invoicedomain "github.com/smartlogix/cargopro/internal/invoice/domain"
	"github.com/smartlogix/cargopro/internal/observability/metrics"
	"github.com/smartlogix/cargopro/internal/providers/pdf"
	"github.com/smartlogix/cargopro/internal/scope"
	settingsdomain "github.com/smartlogix/cargopro/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrNotFound        = errors.New("not_found")
	ErrNoInvoices      = errors.New("no_invoices")
)

type Service interface {
	// GenerateForCustomer renders the customer's most recent invoice.
	// Returns the PDF content and a suggested filename.
	GenerateForCustomer(ctx context.Context, customerID string) (io.Reader, string, error)
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Provider pdf.Provider
	Settings settingsdomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	provider pdf.Provider
	settings settingsdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("pdfexport.service"),
		provider: p.Provider,
		settings: p.Settings,
		metrics:  p.Metrics,
	}
}

type itemRow struct {
	ParcelNo    string `gorm:"column:parcel_no"`
	Description string `gorm:"column:description"`
	Cost        string `gorm:"column:cost"`
}

func (s *ServiceImpl) GenerateForCustomer(ctx context.Context, rawID string) (io.Reader, string, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || customerID == 0 {
		return nil, "", ErrInvalidCustomer
	}

	stmt := s.db.WithContext(ctx).Model(&customerdomain.Customer{})
	if id, ok := authcontext.IdentityFromContext(ctx); ok {
		stmt = stmt.Scopes(scope.Visible(id, scope.ResourceCustomer))
	}
	var customer customerdomain.Customer
	err = stmt.Where("customers.id = ?", customerID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("issue_date desc, invoice_no desc").
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrNoInvoices
	}
	if err != nil {
		return nil, "", err
	}

	var rows []itemRow
	err = s.db.WithContext(ctx).Raw(
		`SELECT invoice_items.parcel_no,
		        COALESCE(parcels.description, '') AS description,
		        invoice_items.cost
		 FROM invoice_items
		 LEFT JOIN parcels ON parcels.parcel_no = invoice_items.parcel_no
		 WHERE invoice_items.invoice_no = ?
		 ORDER BY invoice_items.created_at asc`,
		invoice.InvoiceNo,
	).Scan(&rows).Error
	if err != nil {
		return nil, "", err
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, "", err
	}

	items := make([]pdf.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, pdf.LineItem{
			ParcelNo:    row.ParcelNo,
			Description: row.Description,
			Cost:        row.Cost,
		})
	}

	data := pdf.InvoiceData{
		SiteName:        settings.SiteName,
		ContactEmail:    settings.ContactEmail,
		InvoiceNumber:   invoice.InvoiceNo,
		IssueDate:       invoice.IssueDate.Format("2006-01-02"),
		DueDate:         invoice.DueDate.Format("2006-01-02"),
		Status:          string(invoice.Status),
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerAddress: customer.Address,
		Items:           items,
		Currency:        invoice.Currency,
		TotalAmount:     invoice.TotalAmount.StringFixed(2),
		Tax:             invoice.Tax.StringFixed(2),
		FinalAmount:     invoice.FinalAmount.StringFixed(2),
	}

	started := time.Now()
	reader, err := s.provider.GenerateInvoice(ctx, data)
	if err != nil {
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.RecordPDFRender(ctx)
	}
	s.log.Info("rendered invoice pdf",
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.Duration("duration", time.Since(started)),
	)
	return reader, "invoice-" + invoice.InvoiceNo + ".pdf", nil
}

var Module = fx.Module("pdfexport", fx.Provide(New))
