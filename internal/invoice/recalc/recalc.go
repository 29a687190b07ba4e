// Package recalc maintains invoice derived totals. Saving an invoice
// runs two phases: phase 1 attaches the customer's unbilled parcels as
// items, phase 2 recomputes total_amount and final_amount. Phase 2
// never re-runs phase 1, so the recompute cycle terminates after one
// pass. Item and parcel writes elsewhere call RecomputeTotals alone.
package recalc

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smartlogix/cargopro/internal/invoice/domain"
	"github.com/smartlogix/cargopro/pkg/db"
	"gorm.io/gorm"
)

var ErrInvoiceNotFound = errors.New("invoice_not_found")

type unbilledParcel struct {
	ParcelNo string          `gorm:"column:parcel_no"`
	Charge   decimal.Decimal `gorm:"column:charge"`
	Currency string          `gorm:"column:currency"`
}

// AttachUnbilled creates one item for each of the customer's parcels
// not yet billed on any invoice. Item cost defaults to the parcel's
// charge. Returns the number of items created. Must run inside the
// same transaction as the invoice save.
func AttachUnbilled(ctx context.Context, tx *gorm.DB, genID *snowflake.Node, invoice *domain.Invoice) (int, error) {
	var parcels []unbilledParcel
	err := tx.WithContext(ctx).Raw(
		`SELECT parcel_no, charge, currency
		 FROM parcels
		 WHERE customer_id = ?
		   AND parcel_no NOT IN (SELECT parcel_no FROM invoice_items)`,
		invoice.CustomerID,
	).Scan(&parcels).Error
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	for _, parcel := range parcels {
		currency := parcel.Currency
		if currency == "" {
			currency = invoice.Currency
		}
		item := domain.InvoiceItem{
			ID:        genID.Generate(),
			InvoiceNo: invoice.InvoiceNo,
			ParcelNo:  parcel.ParcelNo,
			Cost:      parcel.Charge,
			Currency:  currency,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			return 0, err
		}
	}
	return len(parcels), nil
}

// RecomputeTotals locks the invoice row, sums item costs in decimal
// arithmetic, and persists only the two derived fields. Idempotent:
// running it twice without intervening item changes writes the same
// totals.
func RecomputeTotals(ctx context.Context, tx *gorm.DB, invoiceNo string) (domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.ForUpdate(tx.WithContext(ctx)).
		Where("invoice_no = ?", invoiceNo).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Invoice{}, ErrInvoiceNotFound
	}
	if err != nil {
		return domain.Invoice{}, err
	}

	var items []domain.InvoiceItem
	if err := tx.WithContext(ctx).
		Where("invoice_no = ?", invoiceNo).
		Find(&items).Error; err != nil {
		return domain.Invoice{}, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Cost)
	}
	total = total.Round(2)
	final := total.Add(invoice.Tax).Round(2)

	invoice.TotalAmount = total
	invoice.FinalAmount = final
	invoice.UpdatedAt = time.Now().UTC()

	err = tx.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("invoice_no = ?", invoiceNo).
		Updates(map[string]interface{}{
			"total_amount": total,
			"final_amount": final,
			"updated_at":   invoice.UpdatedAt,
		}).Error
	if err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

// DetachParcels deletes the items billing the given parcels and
// recomputes every affected invoice, so parcel deletion never leaves
// stale totals. Must run inside the caller's transaction.
func DetachParcels(ctx context.Context, tx *gorm.DB, parcelNos []string) error {
	if len(parcelNos) == 0 {
		return nil
	}
	var invoiceNos []string
	err := tx.WithContext(ctx).Raw(
		`SELECT DISTINCT invoice_no FROM invoice_items WHERE parcel_no IN ?`,
		parcelNos,
	).Scan(&invoiceNos).Error
	if err != nil {
		return err
	}
	if err := tx.WithContext(ctx).
		Where("parcel_no IN ?", parcelNos).
		Delete(&domain.InvoiceItem{}).Error; err != nil {
		return err
	}
	for _, invoiceNo := range invoiceNos {
		if _, err := RecomputeTotals(ctx, tx, invoiceNo); err != nil {
			return err
		}
	}
	return nil
}
