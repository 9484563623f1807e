package migration

import (
	"github.com/masjidkita/masjidkita/internal/config"
	"github.com/masjidkita/masjidkita/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.DefaultMosqueID != 0 {
			if err := seed.EnsureDefaultMosqueWithID(conn, cfg.DefaultMosqueID); err != nil {
				return err
			}
		} else {
			if err := seed.EnsureDefaultMosque(conn); err != nil {
				return err
			}
		}
		if cfg.Bootstrap.EnsureDefaultMosqueAndAdmin {
			return seed.EnsureDefaultMosqueAndAdmin(conn)
		}
		return nil
	}),
)
