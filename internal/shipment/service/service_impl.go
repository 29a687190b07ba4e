package service

import (
	"context"
	"strings"
	"time"

	"github.com/smartlogix/cargopro/internal/authcontext"
	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	"github.com/smartlogix/cargopro/internal/invoice/recalc"
	"github.com/smartlogix/cargopro/internal/scope"
	"github.com/smartlogix/cargopro/internal/shipment/domain"
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
		log:  p.Log.Named("shipment.service"),
		repo: p.Repo,
	}
}

func (s *Service) scoped(ctx context.Context) *gorm.DB {
	id, ok := authcontext.IdentityFromContext(ctx)
	if !ok {
		return s.db
	}
	return s.db.Scopes(scope.Visible(id, scope.ResourceShipment))
}

func (s *Service) Create(ctx context.Context, req domain.CreateShipmentRequest) (domain.Shipment, error) {
	shipmentNo := strings.TrimSpace(req.ShipmentNo)
	if shipmentNo == "" {
		return domain.Shipment{}, domain.ErrInvalidShipmentNo
	}

	transport := domain.TransportMode(strings.TrimSpace(req.Transport))
	if !transport.Valid() {
		return domain.Shipment{}, domain.ErrInvalidTransport
	}

	vessel := strings.TrimSpace(req.Vessel)
	if vessel == "" {
		return domain.Shipment{}, domain.ErrInvalidVessel
	}

	if req.Weight < 0 {
		return domain.Shipment{}, domain.ErrInvalidWeight
	}
	weightUnit := strings.TrimSpace(req.WeightUnit)
	if weightUnit == "" {
		weightUnit = domain.WeightKg
	}
	if !domain.ValidWeightUnit(weightUnit) {
		return domain.Shipment{}, domain.ErrInvalidWeight
	}

	if req.Volume < 0 {
		return domain.Shipment{}, domain.ErrInvalidVolume
	}
	volumeUnit := strings.TrimSpace(req.VolumeUnit)
	if volumeUnit == "" {
		volumeUnit = domain.VolumeCubicMeters
	}
	if !domain.ValidVolumeUnit(volumeUnit) {
		return domain.Shipment{}, domain.ErrInvalidVolume
	}

	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		return domain.Shipment{}, domain.ErrInvalidRoute
	}

	status := domain.ShipmentStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = domain.StatusNotBoarded
	}
	if !status.Valid() {
		return domain.Shipment{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	shipment := domain.Shipment{
		ShipmentNo:  shipmentNo,
		Transport:   transport,
		Vessel:      vessel,
		Weight:      req.Weight,
		WeightUnit:  weightUnit,
		Volume:      req.Volume,
		VolumeUnit:  volumeUnit,
		Origin:      origin,
		Destination: destination,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &shipment); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Shipment{}, domain.ErrShipmentExists
		}
		return domain.Shipment{}, err
	}
	return shipment, nil
}

func (s *Service) List(ctx context.Context, req domain.ListShipmentRequest) (domain.ListShipmentResponse, error) {
	filter := domain.ListShipmentFilter{
		Status:      strings.TrimSpace(req.Status),
		Transport:   strings.TrimSpace(req.Transport),
		Origin:      strings.TrimSpace(req.Origin),
		Destination: strings.TrimSpace(req.Destination),
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
		return domain.ListShipmentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(shipment *domain.Shipment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        shipment.ShipmentNo,
			CreatedAt: shipment.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	shipments := make([]domain.Shipment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		shipments = append(shipments, *item)
	}

	resp := domain.ListShipmentResponse{Shipments: shipments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, shipmentNo string) (domain.Shipment, error) {
	shipmentNo = strings.TrimSpace(shipmentNo)
	if shipmentNo == "" {
		return domain.Shipment{}, domain.ErrInvalidShipmentNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), shipmentNo)
	if err != nil {
		return domain.Shipment{}, err
	}
	if item == nil {
		return domain.Shipment{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateShipmentRequest) (domain.Shipment, error) {
	shipmentNo := strings.TrimSpace(req.ShipmentNo)
	if shipmentNo == "" {
		return domain.Shipment{}, domain.ErrInvalidShipmentNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), shipmentNo)
	if err != nil {
		return domain.Shipment{}, err
	}
	if item == nil {
		return domain.Shipment{}, domain.ErrNotFound
	}

	if req.Transport != nil {
		transport := domain.TransportMode(strings.TrimSpace(*req.Transport))
		if !transport.Valid() {
			return domain.Shipment{}, domain.ErrInvalidTransport
		}
		item.Transport = transport
	}
	if req.Vessel != nil {
		vessel := strings.TrimSpace(*req.Vessel)
		if vessel == "" {
			return domain.Shipment{}, domain.ErrInvalidVessel
		}
		item.Vessel = vessel
	}
	if req.Weight != nil {
		if *req.Weight < 0 {
			return domain.Shipment{}, domain.ErrInvalidWeight
		}
		item.Weight = *req.Weight
	}
	if req.WeightUnit != nil {
		if !domain.ValidWeightUnit(*req.WeightUnit) {
			return domain.Shipment{}, domain.ErrInvalidWeight
		}
		item.WeightUnit = *req.WeightUnit
	}
	if req.Volume != nil {
		if *req.Volume < 0 {
			return domain.Shipment{}, domain.ErrInvalidVolume
		}
		item.Volume = *req.Volume
	}
	if req.VolumeUnit != nil {
		if !domain.ValidVolumeUnit(*req.VolumeUnit) {
			return domain.Shipment{}, domain.ErrInvalidVolume
		}
		item.VolumeUnit = *req.VolumeUnit
	}
	if req.Origin != nil {
		origin := strings.TrimSpace(*req.Origin)
		if origin == "" {
			return domain.Shipment{}, domain.ErrInvalidRoute
		}
		item.Origin = origin
	}
	if req.Destination != nil {
		destination := strings.TrimSpace(*req.Destination)
		if destination == "" {
			return domain.Shipment{}, domain.ErrInvalidRoute
		}
		item.Destination = destination
	}
	if req.Steps != nil {
		item.Steps = *req.Steps
	}
	if req.Status != nil {
		status := domain.ShipmentStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return domain.Shipment{}, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Shipment{}, err
	}
	return *item, nil
}

// Delete removes the shipment, its parcels and documents, and any
// invoice items billing those parcels, then recomputes the affected
// invoices. All in one transaction.
func (s *Service) Delete(ctx context.Context, shipmentNo string) error {
	shipmentNo = strings.TrimSpace(shipmentNo)
	if shipmentNo == "" {
		return domain.ErrInvalidShipmentNo
	}

	item, err := s.repo.Find(ctx, s.scoped(ctx), shipmentNo)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parcelNos []string
		if err := tx.Raw(
			`SELECT parcel_no FROM parcels WHERE shipment_no = ?`,
			shipmentNo,
		).Scan(&parcelNos).Error; err != nil {
			return err
		}
		if err := recalc.DetachParcels(ctx, tx, parcelNos); err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM documents WHERE shipment_no = ?`, shipmentNo).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM parcels WHERE shipment_no = ?`, shipmentNo).Error; err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, shipmentNo)
	})
}

func (s *Service) Customers(ctx context.Context, shipmentNo string) ([]customerdomain.Customer, error) {
	shipmentNo = strings.TrimSpace(shipmentNo)
	if shipmentNo == "" {
		return nil, domain.ErrInvalidShipmentNo
	}

	// The shipment itself must be visible to the caller first.
	item, err := s.repo.Find(ctx, s.scoped(ctx), shipmentNo)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	return s.repo.Customers(ctx, s.db, shipmentNo)
}
