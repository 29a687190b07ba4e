package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	"github.com/smartlogix/cargopro/internal/invoice/domain"
	"github.com/smartlogix/cargopro/internal/invoice/repository"
	parceldomain "github.com/smartlogix/cargopro/internal/parcel/domain"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupInvoiceService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&customerdomain.Customer{},
		&shipmentdomain.Shipment{},
		&parceldomain.Parcel{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, email string) customerdomain.Customer {
	t.Helper()
	customer := customerdomain.Customer{
		ID:        node.Generate(),
		Name:      "Test Customer",
		Email:     email,
		Status:    customerdomain.StatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedShipment(t *testing.T, db *gorm.DB, shipmentNo string) {
	t.Helper()
	shipment := shipmentdomain.Shipment{
		ShipmentNo:  shipmentNo,
		Transport:   shipmentdomain.TransportSea,
		Vessel:      "MV Amani",
		Weight:      1200,
		WeightUnit:  shipmentdomain.WeightKg,
		Volume:      8,
		VolumeUnit:  shipmentdomain.VolumeCubicMeters,
		Origin:      "Dar es Salaam",
		Destination: "Mwanza",
		Status:      shipmentdomain.StatusInTransit,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&shipment).Error)
}

func seedParcel(t *testing.T, db *gorm.DB, parcelNo, shipmentNo string, customerID snowflake.ID, charge string) {
	t.Helper()
	amount, err := decimal.NewFromString(charge)
	require.NoError(t, err)
	parcel := parceldomain.Parcel{
		ParcelNo:      parcelNo,
		ShipmentNo:    shipmentNo,
		CustomerID:    &customerID,
		Weight:        10,
		WeightUnit:    shipmentdomain.WeightKg,
		Volume:        1,
		VolumeUnit:    shipmentdomain.VolumeCubicMeters,
		Charge:        amount,
		Currency:      "TZS",
		Payment:       parceldomain.PaymentUnpaid,
		CommodityType: parceldomain.CommodityBox,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(&parcel).Error)
}

func dueDate() *time.Time {
	due := time.Now().UTC().Add(30 * 24 * time.Hour)
	return &due
}

func TestCreateAttachesUnbilledParcelsAndComputesTotals(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")
	seedShipment(t, db, "SHP-001")
	seedParcel(t, db, "PCL-001", "SHP-001", customer.ID, "1000")
	seedParcel(t, db, "PCL-002", "SHP-001", customer.ID, "2500")

	invoice, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
		Tax:        "0",
	})
	require.NoError(t, err)

	assert.Equal(t, "3500.00", invoice.TotalAmount.StringFixed(2))
	assert.Equal(t, "3500.00", invoice.FinalAmount.StringFixed(2))
	assert.Equal(t, "TZS", invoice.Currency)

	items, err := svc.ListItems(ctx, "INV-001")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFinalAmountIncludesTax(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")
	seedShipment(t, db, "SHP-001")
	seedParcel(t, db, "PCL-001", "SHP-001", customer.ID, "1000")

	invoice, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
		Tax:        "180.50",
	})
	require.NoError(t, err)

	assert.Equal(t, "1000.00", invoice.TotalAmount.StringFixed(2))
	assert.Equal(t, "1180.50", invoice.FinalAmount.StringFixed(2))
}

func TestInvoiceWithNoParcelsHasZeroTotal(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")

	invoice, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	require.NoError(t, err)

	assert.Equal(t, "0.00", invoice.TotalAmount.StringFixed(2))
	assert.Equal(t, "0.00", invoice.FinalAmount.StringFixed(2))
}

func TestUpdatePicksUpNewParcelsAndIsIdempotent(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")
	seedShipment(t, db, "SHP-001")
	seedParcel(t, db, "PCL-001", "SHP-001", customer.ID, "1000")
	seedParcel(t, db, "PCL-002", "SHP-001", customer.ID, "2500")

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	require.NoError(t, err)

	// A third parcel appears after the invoice was created.
	seedParcel(t, db, "PCL-003", "SHP-001", customer.ID, "500")

	updated, err := svc.Update(ctx, domain.UpdateInvoiceRequest{InvoiceNo: "INV-001"})
	require.NoError(t, err)
	assert.Equal(t, "4000.00", updated.TotalAmount.StringFixed(2))

	// No intervening changes: the second save yields identical totals.
	again, err := svc.Update(ctx, domain.UpdateInvoiceRequest{InvoiceNo: "INV-001"})
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(again.TotalAmount))
	assert.True(t, updated.FinalAmount.Equal(again.FinalAmount))

	items, err := svc.ListItems(ctx, "INV-001")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestCreateItemDefaultsCostFromParcelCharge(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")
	seedShipment(t, db, "SHP-001")

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	require.NoError(t, err)

	seedParcel(t, db, "PCL-001", "SHP-001", customer.ID, "750.25")

	item, err := svc.CreateItem(ctx, domain.CreateItemRequest{
		InvoiceNo: "INV-001",
		ParcelNo:  "PCL-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "750.25", item.Cost.StringFixed(2))

	invoice, err := svc.Get(ctx, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, "750.25", invoice.TotalAmount.StringFixed(2))
}

func TestCreateItemDuplicateParcelIsConflict(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")
	seedShipment(t, db, "SHP-001")
	seedParcel(t, db, "PCL-001", "SHP-001", customer.ID, "1000")

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	require.NoError(t, err)

	// PCL-001 was auto-attached; billing it again must fail cleanly.
	_, err = svc.CreateItem(ctx, domain.CreateItemRequest{
		InvoiceNo: "INV-001",
		ParcelNo:  "PCL-001",
	})
	assert.ErrorIs(t, err, domain.ErrItemExists)

	invoice, err := svc.Get(ctx, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", invoice.TotalAmount.StringFixed(2))
}

func TestUpdateAndDeleteItemRecompute(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")
	seedShipment(t, db, "SHP-001")
	seedParcel(t, db, "PCL-001", "SHP-001", customer.ID, "1000")
	seedParcel(t, db, "PCL-002", "SHP-001", customer.ID, "2500")

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	require.NoError(t, err)

	items, err := svc.ListItems(ctx, "INV-001")
	require.NoError(t, err)
	require.Len(t, items, 2)

	_, err = svc.UpdateItem(ctx, domain.UpdateItemRequest{
		InvoiceNo: "INV-001",
		ItemID:    items[0].ID.String(),
		Cost:      "1500",
	})
	require.NoError(t, err)

	invoice, err := svc.Get(ctx, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, "4000.00", invoice.TotalAmount.StringFixed(2))

	require.NoError(t, svc.DeleteItem(ctx, "INV-001", items[1].ID.String()))

	invoice, err = svc.Get(ctx, "INV-001")
	require.NoError(t, err)
	assert.Equal(t, "1500.00", invoice.TotalAmount.StringFixed(2))
}

func TestDeleteInvoiceRemovesItems(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")
	seedShipment(t, db, "SHP-001")
	seedParcel(t, db, "PCL-001", "SHP-001", customer.ID, "1000")

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "INV-001"))

	var count int64
	require.NoError(t, db.Model(&domain.InvoiceItem{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Get(ctx, "INV-001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, db, node := setupInvoiceService(t)
	ctx := context.Background()

	customer := seedCustomer(t, db, node, "owner@example.com")

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceNo)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: "nope",
		DueDate:    dueDate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: node.Generate().String(),
		DueDate:    dueDate(),
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDueDate)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
		Tax:        "-5",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTax)

	// Duplicate invoice number.
	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		InvoiceNo:  "INV-001",
		CustomerID: customer.ID.String(),
		DueDate:    dueDate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvoiceExists)
}

// memoryDSN names a private shared-cache database per test so every
// pooled connection lands on the same in-memory store.
func memoryDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}
