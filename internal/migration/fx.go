package migration

import (
	"github.com/dukandar/khata/internal/config"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	"github.com/dukandar/khata/internal/seed"
	taxdomain "github.com/dukandar/khata/internal/tax/domain"
	recorddomain "github.com/dukandar/khata/internal/taxrecord/domain"
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
			// Non-postgres deployments (sqlite, mysql) build the schema from
			// the models instead of the embedded SQL.
			if err := conn.AutoMigrate(
				&drawerdomain.Transaction{},
				&taxdomain.Settings{},
				&taxdomain.Slab{},
				&recorddomain.Record{},
				&recorddomain.Payment{},
			); err != nil {
				return err
			}
		}

		if cfg.DefaultOrgID != 0 {
			return seed.EnsureDefaultSettings(conn, cfg.DefaultOrgID)
		}
		return nil
	}),
)
