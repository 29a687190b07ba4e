// Package seed installs the rows a fresh install needs: the role
// groups, the settings singleton, and an optional bootstrap admin.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smartlogix/cargopro/internal/config"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	"github.com/smartlogix/cargopro/internal/identity/password"
	settingsdomain "github.com/smartlogix/cargopro/internal/settings/domain"
	"gorm.io/gorm"
)

const bootstrapAdminUsername = "admin"

// Ensure is idempotent; every step checks before it writes.
func Ensure(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureGroups(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureSettings(ctx, tx, cfg); err != nil {
			return err
		}
		return ensureBootstrapAdmin(ctx, tx, node, cfg)
	})
}

func ensureGroups(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, name := range []string{identitydomain.GroupAdmin, identitydomain.GroupStaff} {
		var group identitydomain.Group
		err := tx.WithContext(ctx).Where("name = ?", name).First(&group).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		group = identitydomain.Group{ID: node.Generate(), Name: name}
		if err := tx.WithContext(ctx).Create(&group).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureSettings(ctx context.Context, tx *gorm.DB, cfg config.Config) error {
	var settings settingsdomain.SystemSettings
	err := tx.WithContext(ctx).
		Where("id = ?", settingsdomain.SingletonID).
		First(&settings).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	settings = settingsdomain.SystemSettings{
		ID:                    settingsdomain.SingletonID,
		SiteName:              "CargoPro",
		ContactEmail:          cfg.BootstrapAdminEmail,
		Timezone:              "UTC",
		Currency:              "TZS",
		EmailAlertsEnabled:    true,
		SessionTimeoutMinutes: 30,
		UpdatedAt:             time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&settings).Error
}

// ensureBootstrapAdmin creates the first admin account. Skipped when
// no bootstrap password is configured or an admin already exists.
func ensureBootstrapAdmin(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.Config) error {
	if cfg.BootstrapAdminPassword == "" {
		return nil
	}

	var count int64
	err := tx.WithContext(ctx).
		Model(&identitydomain.User{}).
		Where("role = ? OR superuser = ?", identitydomain.RoleAdmin, true).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := identitydomain.User{
		ID:           node.Generate(),
		Username:     bootstrapAdminUsername,
		Email:        strings.ToLower(cfg.BootstrapAdminEmail),
		PasswordHash: hashed,
		Role:         identitydomain.RoleAdmin,
		Superuser:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}

	profile := identitydomain.UserProfile{
		ID:        node.Generate(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&profile).Error
}
