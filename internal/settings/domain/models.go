package domain

import (
	"context"
	"errors"
	"time"
)

// SingletonID keys the one settings row. Saves always write this ID.
const SingletonID = 1

// SystemSettings is a process-wide singleton. Readable by any
// authenticated user, writable by admin only; the write gate lives in
// the access policy.
type SystemSettings struct {
	ID                    int64     `gorm:"primaryKey" json:"id"`
	SiteName              string    `gorm:"not null;default:CargoPro" json:"site_name"`
	ContactEmail          string    `gorm:"not null" json:"contact_email"`
	Timezone              string    `gorm:"not null;default:UTC" json:"timezone"`
	Currency              string    `gorm:"not null;default:TZS" json:"currency"`
	LogoPath              string    `json:"logo_path,omitempty"`
	EmailAlertsEnabled    bool      `gorm:"not null;default:true" json:"email_alerts_enabled"`
	SMSAlertsEnabled      bool      `gorm:"not null;default:false" json:"sms_alerts_enabled"`
	TwoFactorEnabled      bool      `gorm:"not null;default:false" json:"two_factor_enabled"`
	SessionTimeoutMinutes uint      `gorm:"not null;default:30" json:"session_timeout_minutes"`
	UpdatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SystemSettings) TableName() string { return "system_settings" }

// UpdateSettingsRequest carries a partial update; nil fields are left
// untouched.
type UpdateSettingsRequest struct {
	SiteName              *string `json:"site_name"`
	ContactEmail          *string `json:"contact_email"`
	Timezone              *string `json:"timezone"`
	Currency              *string `json:"currency"`
	EmailAlertsEnabled    *bool   `json:"email_alerts_enabled"`
	SMSAlertsEnabled      *bool   `json:"sms_alerts_enabled"`
	TwoFactorEnabled      *bool   `json:"two_factor_enabled"`
	SessionTimeoutMinutes *uint   `json:"session_timeout_minutes"`
}

type Service interface {
	// Load returns the singleton, creating it with defaults on first
	// access.
	Load(ctx context.Context) (SystemSettings, error)
	Update(context.Context, UpdateSettingsRequest) (SystemSettings, error)
}

var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidTimezone = errors.New("invalid_timezone")
	ErrInvalidTimeout  = errors.New("invalid_timeout")
)
