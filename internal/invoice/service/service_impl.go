package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smartlogix/cargopro/internal/authcontext"
	"github.com/smartlogix/cargopro/internal/invoice/domain"
	"github.com/smartlogix/cargopro/internal/invoice/recalc"
	"github.com/smartlogix/cargopro/internal/observability/metrics"
	"github.com/smartlogix/cargopro/internal/scope"
	"github.com/smartlogix/cargopro/pkg/db"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) scoped(ctx context.Context) *gorm.DB {
	id, ok := authcontext.IdentityFromContext(ctx)
	if !ok {
		return s.db
	}
	return s.db.Scopes(scope.Visible(id, scope.ResourceInvoice))
}

func (s *Service) scopedItems(ctx context.Context) *gorm.DB {
	id, ok := authcontext.IdentityFromContext(ctx)
	if !ok {
		return s.db
	}
	return s.db.Scopes(scope.Visible(id, scope.ResourceInvoiceItem))
}

// Create persists the invoice in two phases inside one transaction:
// phase 1 writes the base fields and attaches the customer's unbilled
// parcels as items, phase 2 recomputes the derived totals under a row
// lock. A failure at any point rolls back the whole save.
func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		return domain.Invoice{}, domain.ErrInvalidInvoiceNo
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}
	if err := s.customerExists(ctx, customerID); err != nil {
		return domain.Invoice{}, err
	}

	if req.DueDate == nil {
		return domain.Invoice{}, domain.ErrInvalidDueDate
	}

	tax, err := parseAmount(req.Tax, domain.ErrInvalidTax)
	if err != nil {
		return domain.Invoice{}, err
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	status := domain.InvoiceStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		InvoiceNo:   invoiceNo,
		CustomerID:  customerID,
		IssueDate:   now,
		DueDate:     req.DueDate.UTC(),
		Tax:         tax,
		Currency:    currency,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
		TotalAmount: decimal.Zero,
		FinalAmount: tax,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrInvoiceExists
			}
			return err
		}
		if _, err := recalc.AttachUnbilled(ctx, tx, s.genID, &invoice); err != nil {
			return err
		}
		recomputed, err := recalc.RecomputeTotals(ctx, tx, invoiceNo)
		if err != nil {
			return err
		}
		invoice = recomputed
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceRecompute(ctx, "invoice_create")
	}
	s.log.Info("invoice created",
		zap.String("invoice_no", invoiceNo),
		zap.String("total_amount", invoice.TotalAmount.StringFixed(2)),
	)
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Status:     strings.TrimSpace(req.Status),
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.InvoiceNo,
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, invoiceNo string) (domain.Invoice, error) {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return domain.Invoice{}, domain.ErrInvalidInvoiceNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), invoiceNo)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *item, nil
}

// Update saves base fields and re-runs both phases, so an invoice
// update also picks up any parcels that became billable since the last
// save.
func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		return domain.Invoice{}, domain.ErrInvalidInvoiceNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), invoiceNo)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	if req.DueDate != nil {
		item.DueDate = req.DueDate.UTC()
	}
	if req.Tax != nil {
		tax, err := parseAmount(*req.Tax, domain.ErrInvalidTax)
		if err != nil {
			return domain.Invoice{}, err
		}
		item.Tax = tax
	}
	if req.Status != nil {
		status := domain.InvoiceStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return domain.Invoice{}, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	item.UpdatedAt = time.Now().UTC()

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		if _, err := recalc.AttachUnbilled(ctx, tx, s.genID, item); err != nil {
			return err
		}
		recomputed, err := recalc.RecomputeTotals(ctx, tx, invoiceNo)
		if err != nil {
			return err
		}
		updated = recomputed
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceRecompute(ctx, "invoice_update")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, invoiceNo string) error {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return domain.ErrInvalidInvoiceNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), invoiceNo)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_no = ?", invoiceNo).
			Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, invoiceNo)
	})
}

func (s *Service) ListItems(ctx context.Context, invoiceNo string) ([]domain.InvoiceItem, error) {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return nil, domain.ErrInvalidInvoiceNo
	}

	// The invoice itself must be visible to the caller.
	invoice, err := s.repo.Find(ctx, s.scoped(ctx), invoiceNo)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}

	return s.repo.ListItems(ctx, s.db, invoiceNo)
}

func (s *Service) CreateItem(ctx context.Context, req domain.CreateItemRequest) (domain.InvoiceItem, error) {
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		return domain.InvoiceItem{}, domain.ErrInvalidInvoiceNo
	}

	invoice, err := s.repo.Find(ctx, s.scoped(ctx), invoiceNo)
	if err != nil {
		return domain.InvoiceItem{}, err
	}
	if invoice == nil {
		return domain.InvoiceItem{}, domain.ErrNotFound
	}

	parcelNo := strings.TrimSpace(req.ParcelNo)
	if parcelNo == "" {
		return domain.InvoiceItem{}, domain.ErrParcelNotFound
	}

	charge, currency, err := s.parcelCharge(ctx, parcelNo)
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	// Unset cost defaults to the parcel's current charge.
	cost := charge
	if raw := strings.TrimSpace(req.Cost); raw != "" {
		cost, err = parseAmount(raw, domain.ErrInvalidCost)
		if err != nil {
			return domain.InvoiceItem{}, err
		}
	}
	if currency == "" {
		currency = invoice.Currency
	}

	now := time.Now().UTC()
	item := domain.InvoiceItem{
		ID:        s.genID.Generate(),
		InvoiceNo: invoiceNo,
		ParcelNo:  parcelNo,
		Cost:      cost,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertItem(ctx, tx, &item); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrItemExists
			}
			return err
		}
		_, err := recalc.RecomputeTotals(ctx, tx, invoiceNo)
		return err
	})
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceRecompute(ctx, "item_create")
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateItemRequest) (domain.InvoiceItem, error) {
	invoiceNo := strings.TrimSpace(req.InvoiceNo)
	if invoiceNo == "" {
		return domain.InvoiceItem{}, domain.ErrInvalidInvoiceNo
	}
	itemID, err := snowflake.ParseString(strings.TrimSpace(req.ItemID))
	if err != nil || itemID == 0 {
		return domain.InvoiceItem{}, domain.ErrInvalidItemID
	}

	item, err := s.repo.FindItem(ctx, s.scopedItems(ctx), invoiceNo, itemID)
	if err != nil {
		return domain.InvoiceItem{}, err
	}
	if item == nil {
		return domain.InvoiceItem{}, domain.ErrItemNotFound
	}

	if raw := strings.TrimSpace(req.Cost); raw != "" {
		cost, err := parseAmount(raw, domain.ErrInvalidCost)
		if err != nil {
			return domain.InvoiceItem{}, err
		}
		item.Cost = cost
	} else {
		// Unset cost re-defaults from the parcel's current charge.
		charge, _, err := s.parcelCharge(ctx, item.ParcelNo)
		if err != nil {
			return domain.InvoiceItem{}, err
		}
		item.Cost = charge
	}
	item.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateItem(ctx, tx, item); err != nil {
			return err
		}
		_, err := recalc.RecomputeTotals(ctx, tx, invoiceNo)
		return err
	})
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceRecompute(ctx, "item_update")
	}
	return *item, nil
}

func (s *Service) DeleteItem(ctx context.Context, invoiceNo, rawItemID string) error {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return domain.ErrInvalidInvoiceNo
	}
	itemID, err := snowflake.ParseString(strings.TrimSpace(rawItemID))
	if err != nil || itemID == 0 {
		return domain.ErrInvalidItemID
	}

	item, err := s.repo.FindItem(ctx, s.scopedItems(ctx), invoiceNo, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrItemNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteItem(ctx, tx, invoiceNo, itemID); err != nil {
			return err
		}
		_, err := recalc.RecomputeTotals(ctx, tx, invoiceNo)
		return err
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceRecompute(ctx, "item_delete")
	}
	return nil
}

func (s *Service) customerExists(ctx context.Context, id snowflake.ID) error {
	var count int64
	err := s.db.WithContext(ctx).
		Table("customers").
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (s *Service) parcelCharge(ctx context.Context, parcelNo string) (decimal.Decimal, string, error) {
	var row struct {
		Charge   decimal.Decimal `gorm:"column:charge"`
		Currency string          `gorm:"column:currency"`
	}
	result := s.db.WithContext(ctx).Raw(
		`SELECT charge, currency FROM parcels WHERE parcel_no = ?`,
		parcelNo,
	).Scan(&row)
	if result.Error != nil {
		return decimal.Decimal{}, "", result.Error
	}
	if result.RowsAffected == 0 {
		return decimal.Decimal{}, "", domain.ErrParcelNotFound
	}
	return row.Charge, row.Currency, nil
}

func parseAmount(raw string, invalid error) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, invalid
	}
	return amount.Round(2), nil
}
