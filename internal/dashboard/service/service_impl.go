package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartlogix/cargopro/internal/config"
	"github.com/smartlogix/cargopro/internal/dashboard/domain"
	invoicedomain "github.com/smartlogix/cargopro/internal/invoice/domain"
	parceldomain "github.com/smartlogix/cargopro/internal/parcel/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config *config.DashboardConfigHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	config *config.DashboardConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("dashboard.service"),
		config: p.Config,
	}
}

type shipmentRow struct {
	Transport string    `gorm:"column:transport"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// ChartData counts shipments per month and transport mode over the
// configured window. Bucketing happens here rather than in SQL so the
// same query runs on every supported dialect.
func (s *Service) ChartData(ctx context.Context) (domain.ChartData, error) {
	cfg := s.config.Current()

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(cfg.MonthsWindow - 1), 0)

	var rows []shipmentRow
	err := s.db.WithContext(ctx).
		Table("shipments").
		Select("transport, created_at").
		Where("created_at >= ?", start).
		Find(&rows).Error
	if err != nil {
		return domain.ChartData{}, err
	}

	allowed := make(map[string]bool, len(cfg.TransportAxes))
	for _, transport := range cfg.TransportAxes {
		allowed[transport] = true
	}

	buckets := make(map[string]*domain.MonthBucket, cfg.MonthsWindow)
	months := make([]string, 0, cfg.MonthsWindow)
	for i := 0; i < cfg.MonthsWindow; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		months = append(months, month)
		counts := make(map[string]int64, len(cfg.TransportAxes))
		for _, transport := range cfg.TransportAxes {
			counts[transport] = 0
		}
		buckets[month] = &domain.MonthBucket{Month: month, Counts: counts}
	}

	for _, row := range rows {
		if !allowed[row.Transport] {
			continue
		}
		bucket, ok := buckets[row.CreatedAt.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		bucket.Counts[row.Transport]++
		bucket.Total++
	}

	payments, err := s.paymentCounts(ctx)
	if err != nil {
		return domain.ChartData{}, err
	}
	invoiceTotals, err := s.invoiceTotals(ctx)
	if err != nil {
		return domain.ChartData{}, err
	}

	data := domain.ChartData{
		Transports:    cfg.TransportAxes,
		Months:        make([]domain.MonthBucket, 0, len(months)),
		Payments:      payments,
		InvoiceTotals: invoiceTotals,
	}
	for _, month := range months {
		data.Months = append(data.Months, *buckets[month])
	}
	return data, nil
}

func (s *Service) paymentCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Payment string `gorm:"column:payment"`
		Count   int64  `gorm:"column:count"`
	}
	err := s.db.WithContext(ctx).
		Table("parcels").
		Select("payment, COUNT(*) AS count").
		Group("payment").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{
		string(parceldomain.PaymentPaid):   0,
		string(parceldomain.PaymentUnpaid): 0,
	}
	for _, row := range rows {
		counts[row.Payment] = row.Count
	}
	return counts, nil
}

// invoiceTotals sums final amounts in Go so the arithmetic stays
// decimal-exact on every dialect.
func (s *Service) invoiceTotals(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Status      string          `gorm:"column:status"`
		FinalAmount decimal.Decimal `gorm:"column:final_amount"`
	}
	err := s.db.WithContext(ctx).
		Table("invoices").
		Select("status, final_amount").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := map[string]decimal.Decimal{
		string(invoicedomain.StatusPending): decimal.Zero,
		string(invoicedomain.StatusPaid):    decimal.Zero,
		string(invoicedomain.StatusOverdue): decimal.Zero,
	}
	for _, row := range rows {
		sums[row.Status] = sums[row.Status].Add(row.FinalAmount)
	}

	totals := make(map[string]string, len(sums))
	for status, sum := range sums {
		totals[status] = sum.Round(2).StringFixed(2)
	}
	return totals, nil
}
