package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smartlogix/cargopro/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("settings.service"),
	}
}

func defaults() domain.SystemSettings {
	return domain.SystemSettings{
		ID:                    domain.SingletonID,
		SiteName:              "CargoPro",
		ContactEmail:          "admin@cargopro.com",
		Timezone:              "UTC",
		Currency:              "TZS",
		EmailAlertsEnabled:    true,
		SessionTimeoutMinutes: 30,
		UpdatedAt:             time.Now().UTC(),
	}
}

func (s *Service) Load(ctx context.Context) (domain.SystemSettings, error) {
	var settings domain.SystemSettings
	err := s.db.WithContext(ctx).
		Where("id = ?", domain.SingletonID).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = defaults()
		if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return domain.SystemSettings{}, err
		}
		return settings, nil
	}
	if err != nil {
		return domain.SystemSettings{}, err
	}
	return settings, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.SystemSettings, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return domain.SystemSettings{}, err
	}

	if req.SiteName != nil {
		if name := strings.TrimSpace(*req.SiteName); name != "" {
			settings.SiteName = name
		}
	}
	if req.ContactEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*req.ContactEmail))
		if email == "" || !strings.Contains(email, "@") {
			return domain.SystemSettings{}, domain.ErrInvalidEmail
		}
		settings.ContactEmail = email
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if _, err := time.LoadLocation(tz); err != nil {
			return domain.SystemSettings{}, domain.ErrInvalidTimezone
		}
		settings.Timezone = tz
	}
	if req.Currency != nil {
		if currency := strings.TrimSpace(*req.Currency); currency != "" {
			settings.Currency = currency
		}
	}
	if req.EmailAlertsEnabled != nil {
		settings.EmailAlertsEnabled = *req.EmailAlertsEnabled
	}
	if req.SMSAlertsEnabled != nil {
		settings.SMSAlertsEnabled = *req.SMSAlertsEnabled
	}
	if req.TwoFactorEnabled != nil {
		settings.TwoFactorEnabled = *req.TwoFactorEnabled
	}
	if req.SessionTimeoutMinutes != nil {
		if *req.SessionTimeoutMinutes == 0 {
			return domain.SystemSettings{}, domain.ErrInvalidTimeout
		}
		settings.SessionTimeoutMinutes = *req.SessionTimeoutMinutes
	}

	// The row is pinned to the singleton ID regardless of input.
	settings.ID = domain.SingletonID
	settings.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&settings).Error; err != nil {
		return domain.SystemSettings{}, err
	}

	s.log.Info("settings updated", zap.String("site_name", settings.SiteName))
	return settings, nil
}
