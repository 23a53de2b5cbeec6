package migration

import (
	billingdomain "github.com/smallbiznis/propease/internal/billing/domain"
	"github.com/smallbiznis/propease/internal/config"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	readingdomain "github.com/smallbiznis/propease/internal/reading/domain"
	"github.com/smallbiznis/propease/internal/seed"
	tenantdomain "github.com/smallbiznis/propease/internal/tenant/domain"
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
			// sqlite and mysql run self-hosted single-node; gorm owns the
			// schema there.
			if err := conn.AutoMigrate(
				&propertydomain.Property{},
				&meterdomain.MainMeter{},
				&tenantdomain.Tenant{},
				&readingdomain.MainMeterReading{},
				&readingdomain.SubMeterReading{},
				&billingdomain.Bill{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultProperty(conn)
	}),
)
