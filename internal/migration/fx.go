package migration

import (
	"github.com/smartlogix/cargopro/internal/config"
	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	documentdomain "github.com/smartlogix/cargopro/internal/document/domain"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	invoicedomain "github.com/smartlogix/cargopro/internal/invoice/domain"
	parceldomain "github.com/smartlogix/cargopro/internal/parcel/domain"
	"github.com/smartlogix/cargopro/internal/seed"
	settingsdomain "github.com/smartlogix/cargopro/internal/settings/domain"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&identitydomain.User{},
				&identitydomain.Group{},
				&identitydomain.UserGroup{},
				&identitydomain.UserProfile{},
				&settingsdomain.SystemSettings{},
				&customerdomain.Customer{},
				&shipmentdomain.Shipment{},
				&parceldomain.Parcel{},
				&documentdomain.Document{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceItem{},
			); err != nil {
				return err
			}
		}

		return seed.Ensure(conn, cfg)
	}),
)
