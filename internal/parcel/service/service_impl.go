package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smartlogix/cargopro/internal/authcontext"
	"github.com/smartlogix/cargopro/internal/invoice/recalc"
	"github.com/smartlogix/cargopro/internal/parcel/domain"
	"github.com/smartlogix/cargopro/internal/scope"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
	"github.com/smartlogix/cargopro/pkg/db"
	"github.com/smartlogix/cargopro/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("parcel.service"),
		repo: p.Repo,
	}
}

func (s *Service) scoped(ctx context.Context) *gorm.DB {
	id, ok := authcontext.IdentityFromContext(ctx)
	if !ok {
		return s.db
	}
	return s.db.Scopes(scope.Visible(id, scope.ResourceParcel))
}

func (s *Service) Create(ctx context.Context, req domain.CreateParcelRequest) (domain.Parcel, error) {
	parcelNo := strings.TrimSpace(req.ParcelNo)
	if parcelNo == "" {
		return domain.Parcel{}, domain.ErrInvalidParcelNo
	}

	shipmentNo := strings.TrimSpace(req.ShipmentNo)
	if shipmentNo == "" {
		return domain.Parcel{}, domain.ErrInvalidShipment
	}
	if err := s.shipmentExists(ctx, shipmentNo); err != nil {
		return domain.Parcel{}, err
	}

	var customerID *snowflake.ID
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Parcel{}, domain.ErrInvalidCustomer
		}
		if err := s.customerExists(ctx, id); err != nil {
			return domain.Parcel{}, err
		}
		customerID = &id
	}

	if req.Weight < 0 {
		return domain.Parcel{}, domain.ErrInvalidWeight
	}
	weightUnit := strings.TrimSpace(req.WeightUnit)
	if weightUnit == "" {
		weightUnit = shipmentdomain.WeightKg
	}
	if !shipmentdomain.ValidWeightUnit(weightUnit) {
		return domain.Parcel{}, domain.ErrInvalidWeight
	}

	if req.Volume < 0 {
		return domain.Parcel{}, domain.ErrInvalidVolume
	}
	volumeUnit := strings.TrimSpace(req.VolumeUnit)
	if volumeUnit == "" {
		volumeUnit = shipmentdomain.VolumeCubicMeters
	}
	if !shipmentdomain.ValidVolumeUnit(volumeUnit) {
		return domain.Parcel{}, domain.ErrInvalidVolume
	}

	charge, err := parseCharge(req.Charge)
	if err != nil {
		return domain.Parcel{}, err
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = "TZS"
	}

	payment := domain.PaymentStatus(strings.TrimSpace(req.Payment))
	if payment == "" {
		payment = domain.PaymentUnpaid
	}
	if !payment.Valid() {
		return domain.Parcel{}, domain.ErrInvalidPayment
	}

	commodity := domain.CommodityType(strings.TrimSpace(req.CommodityType))
	if commodity == "" {
		commodity = domain.CommodityParcel
	}
	if !commodity.Valid() {
		return domain.Parcel{}, domain.ErrInvalidCommodity
	}

	now := time.Now().UTC()
	parcel := domain.Parcel{
		ParcelNo:      parcelNo,
		ShipmentNo:    shipmentNo,
		CustomerID:    customerID,
		Weight:        req.Weight,
		WeightUnit:    weightUnit,
		Volume:        req.Volume,
		VolumeUnit:    volumeUnit,
		Charge:        charge,
		Currency:      currency,
		Payment:       payment,
		CommodityType: commodity,
		Description:   strings.TrimSpace(req.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &parcel); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Parcel{}, domain.ErrParcelExists
		}
		return domain.Parcel{}, err
	}

	// Reload so the response carries the shipment-mirrored status.
	created, err := s.repo.Find(ctx, s.db, parcelNo)
	if err != nil || created == nil {
		return parcel, nil
	}
	return *created, nil
}

func (s *Service) List(ctx context.Context, req domain.ListParcelRequest) (domain.ListParcelResponse, error) {
	filter := domain.ListParcelFilter{
		ShipmentNo: strings.TrimSpace(req.ShipmentNo),
		CustomerID: strings.TrimSpace(req.CustomerID),
		Payment:    strings.TrimSpace(req.Payment),
		Commodity:  strings.TrimSpace(req.Commodity),
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
		return domain.ListParcelResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(parcel *domain.Parcel) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        parcel.ParcelNo,
			CreatedAt: parcel.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	parcels := make([]domain.Parcel, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		parcels = append(parcels, *item)
	}

	resp := domain.ListParcelResponse{Parcels: parcels}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, parcelNo string) (domain.Parcel, error) {
	parcelNo = strings.TrimSpace(parcelNo)
	if parcelNo == "" {
		return domain.Parcel{}, domain.ErrInvalidParcelNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), parcelNo)
	if err != nil {
		return domain.Parcel{}, err
	}
	if item == nil {
		return domain.Parcel{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateParcelRequest) (domain.Parcel, error) {
	parcelNo := strings.TrimSpace(req.ParcelNo)
	if parcelNo == "" {
		return domain.Parcel{}, domain.ErrInvalidParcelNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), parcelNo)
	if err != nil {
		return domain.Parcel{}, err
	}
	if item == nil {
		return domain.Parcel{}, domain.ErrNotFound
	}

	if req.ShipmentNo != nil {
		shipmentNo := strings.TrimSpace(*req.ShipmentNo)
		if shipmentNo == "" {
			return domain.Parcel{}, domain.ErrInvalidShipment
		}
		if err := s.shipmentExists(ctx, shipmentNo); err != nil {
			return domain.Parcel{}, err
		}
		item.ShipmentNo = shipmentNo
	}
	if req.CustomerID != nil {
		if raw := strings.TrimSpace(*req.CustomerID); raw == "" {
			item.CustomerID = nil
		} else {
			id, err := snowflake.ParseString(raw)
			if err != nil || id == 0 {
				return domain.Parcel{}, domain.ErrInvalidCustomer
			}
			if err := s.customerExists(ctx, id); err != nil {
				return domain.Parcel{}, err
			}
			item.CustomerID = &id
		}
	}
	if req.Weight != nil {
		if *req.Weight < 0 {
			return domain.Parcel{}, domain.ErrInvalidWeight
		}
		item.Weight = *req.Weight
	}
	if req.WeightUnit != nil {
		if !shipmentdomain.ValidWeightUnit(*req.WeightUnit) {
			return domain.Parcel{}, domain.ErrInvalidWeight
		}
		item.WeightUnit = *req.WeightUnit
	}
	if req.Volume != nil {
		if *req.Volume < 0 {
			return domain.Parcel{}, domain.ErrInvalidVolume
		}
		item.Volume = *req.Volume
	}
	if req.VolumeUnit != nil {
		if !shipmentdomain.ValidVolumeUnit(*req.VolumeUnit) {
			return domain.Parcel{}, domain.ErrInvalidVolume
		}
		item.VolumeUnit = *req.VolumeUnit
	}
	if req.Charge != nil {
		charge, err := parseCharge(*req.Charge)
		if err != nil {
			return domain.Parcel{}, err
		}
		item.Charge = charge
	}
	if req.Payment != nil {
		payment := domain.PaymentStatus(strings.TrimSpace(*req.Payment))
		if !payment.Valid() {
			return domain.Parcel{}, domain.ErrInvalidPayment
		}
		item.Payment = payment
	}
	if req.CommodityType != nil {
		commodity := domain.CommodityType(strings.TrimSpace(*req.CommodityType))
		if !commodity.Valid() {
			return domain.Parcel{}, domain.ErrInvalidCommodity
		}
		item.CommodityType = commodity
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Parcel{}, err
	}

	updated, err := s.repo.Find(ctx, s.db, parcelNo)
	if err != nil || updated == nil {
		return *item, nil
	}
	return *updated, nil
}

// Delete removes the parcel, detaches it from any invoice that billed
// it, and recomputes the affected invoice totals in one transaction.
// Documents keep their record but lose the parcel reference.
func (s *Service) Delete(ctx context.Context, parcelNo string) error {
	parcelNo = strings.TrimSpace(parcelNo)
	if parcelNo == "" {
		return domain.ErrInvalidParcelNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), parcelNo)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := recalc.DetachParcels(ctx, tx, []string{parcelNo}); err != nil {
			return err
		}
		if err := tx.Exec(
			`UPDATE documents SET parcel_no = NULL WHERE parcel_no = ?`,
			parcelNo,
		).Error; err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, parcelNo)
	})
}

func (s *Service) shipmentExists(ctx context.Context, shipmentNo string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&shipmentdomain.Shipment{}).
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

func parseCharge(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	charge, err := decimal.NewFromString(raw)
	if err != nil || charge.IsNegative() {
		return decimal.Decimal{}, domain.ErrInvalidCharge
	}
	return charge.Round(2), nil
}
